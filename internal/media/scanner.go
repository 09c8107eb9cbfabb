package media

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"home-gallery/internal/cache"
	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// SortMode selects the ordering of a listing.
type SortMode string

const (
	// SortDefault keeps filesystem walk order.
	SortDefault SortMode = "default"
	// SortRandom shuffles the listing.
	SortRandom SortMode = "random"
	// SortNew orders by modification time, newest first.
	SortNew SortMode = "new"
)

// ScanKey identifies one cache line: a directory plus whether the scan
// included per-file dimension resolution. The two cost profiles differ
// sharply, so they are cached independently.
type ScanKey struct {
	Dir            string
	WithDimensions bool
}

// Scanner enumerates media files under a directory tree and caches results
// for a configurable TTL. Construct once and share; all methods are safe for
// concurrent use.
type Scanner struct {
	mediaRoot string
	cache     *cache.Cache[ScanKey, []Record]

	// thumbPath maps a media-root-relative path to its expected thumbnail
	// location so existing thumbnails can supply real dimensions. May be nil.
	thumbPath func(relativePath string) string
}

// NewScanner creates a Scanner rooted at mediaRoot. scanCache may be nil to
// disable caching entirely; thumbPath may be nil if no thumbnail store is
// available.
func NewScanner(mediaRoot string, scanCache *cache.Cache[ScanKey, []Record], thumbPath func(string) string) *Scanner {
	return &Scanner{
		mediaRoot: mediaRoot,
		cache:     scanCache,
		thumbPath: thumbPath,
	}
}

// MediaRoot returns the scanner's root directory.
func (s *Scanner) MediaRoot() string {
	return s.mediaRoot
}

// Scan recursively enumerates media files under dir. Paths in the returned
// records are relative to dir. Unsupported extensions are skipped silently;
// files that vanish or cannot be read mid-scan are counted as scan errors and
// excluded. A permission failure on dir itself is the one error that
// propagates.
//
// When useCache is true, results are served from and stored in the TTL cache
// under (dir, includeDimensions). Empty results are never cached so a
// transient enumeration failure cannot masquerade as an empty folder for the
// TTL duration.
func (s *Scanner) Scan(dir string, useCache, includeDimensions bool) ([]Record, error) {
	start := time.Now()

	key := ScanKey{Dir: dir, WithDimensions: includeDimensions}
	if useCache && s.cache != nil {
		if records, ok := s.cache.Get(key); ok {
			metrics.ScannerScansTotal.WithLabelValues("cache", "success").Inc()
			logging.Debug("scan cache hit: %s (dimensions=%v, %d records)", dir, includeDimensions, len(records))
			return records, nil
		}
	}

	records, err := s.walk(dir, includeDimensions)
	if err != nil {
		metrics.ScannerScansTotal.WithLabelValues("walk", "error").Inc()
		return nil, err
	}

	metrics.ScannerScansTotal.WithLabelValues("walk", "success").Inc()
	metrics.ScannerScanDuration.Observe(time.Since(start).Seconds())

	if useCache && s.cache != nil && len(records) > 0 {
		s.cache.Set(key, records)
	}

	return records, nil
}

// walk performs the recursive enumeration.
func (s *Scanner) walk(dir string, includeDimensions bool) ([]Record, error) {
	var records []Record
	var filesScanned, skipped, scanErrors int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				// Unreadable root is indistinguishable from an empty gallery
				// otherwise; surface it.
				return fmt.Errorf("failed to scan %s: %w", dir, err)
			}
			logging.Warn("error accessing %s during scan: %v", path, err)
			scanErrors++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		filesScanned++

		kind := KindForPath(d.Name())
		if kind == KindOther {
			skipped++
			return nil
		}

		// Broken symlinks and files deleted mid-walk surface here.
		if _, err := os.Stat(path); err != nil {
			logging.Warn("skipping unreadable file %s: %v", path, err)
			scanErrors++
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			scanErrors++
			return nil
		}

		records = append(records, s.buildRecord(path, relPath, kind, includeDimensions))
		return nil
	})

	metrics.ScannerFilesScanned.Add(float64(filesScanned))
	metrics.ScannerFileErrors.Add(float64(scanErrors))

	if err != nil {
		return nil, err
	}

	logging.Debug("scanned %s: %d media, %d skipped, %d errors", dir, len(records), skipped, scanErrors)
	return records, nil
}

// buildRecord normalizes one accepted file into a Record.
func (s *Scanner) buildRecord(fullPath, relPath string, kind Kind, includeDimensions bool) Record {
	rec := Record{
		RelativePath: relPath,
		Kind:         kind,
		ThumbnailURL: ThumbnailURLFor(relPath),
	}

	if includeDimensions {
		var thumbPath string
		if kind == KindVideo && s.thumbPath != nil {
			// The thumbnail store keys on media-root-relative paths.
			if rootRel, err := filepath.Rel(s.mediaRoot, fullPath); err == nil {
				thumbPath = s.thumbPath(rootRel)
			}
		}
		rec.Width, rec.Height = resolveDimensions(fullPath, thumbPath, kind)
	} else {
		rec.Width, rec.Height = defaultDimensions(kind)
	}

	return rec
}

// Sorted returns a sorted copy of records; the input is never mutated so
// cached listings stay stable. base is the directory the records' paths are
// relative to, needed to stat files for SortNew. If a stat fails mid-sort the
// listing is returned unsorted rather than aborting.
func (s *Scanner) Sorted(records []Record, base string, mode SortMode) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	switch mode {
	case SortRandom:
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})

	case SortNew:
		modTimes := make(map[string]time.Time, len(out))
		for _, rec := range out {
			info, err := os.Stat(filepath.Join(base, rec.RelativePath))
			if err != nil {
				logging.Warn("sort by newest: stat failed for %s, returning unsorted: %v", rec.RelativePath, err)
				return out
			}
			modTimes[rec.RelativePath] = info.ModTime()
		}
		sort.SliceStable(out, func(i, j int) bool {
			return modTimes[out[i].RelativePath].After(modTimes[out[j].RelativePath])
		})
	}

	return out
}

// Rebase rewrites records scanned from a subfolder so paths and thumbnail
// URLs are relative to the media root. folderRel is the subfolder's path
// relative to the media root; an empty folderRel returns the records
// unchanged.
func Rebase(records []Record, folderRel string) []Record {
	if folderRel == "" || folderRel == "." {
		return records
	}

	out := make([]Record, len(records))
	for i, rec := range records {
		rec.RelativePath = filepath.Join(folderRel, rec.RelativePath)
		rec.ThumbnailURL = ThumbnailURLFor(rec.RelativePath)
		out[i] = rec
	}
	return out
}

// ListSubfolders returns the names of the immediate subdirectories of dir,
// hidden directories excluded.
func ListSubfolders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			folders = append(folders, entry.Name())
		}
	}
	return folders, nil
}

// InvalidatePath drops every cache line whose directory contains path. Used
// by the watcher when the tree changes under a cached listing.
func (s *Scanner) InvalidatePath(path string) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.InvalidateFunc(func(key ScanKey) bool {
		return key.Dir == path || strings.HasPrefix(path, key.Dir+string(filepath.Separator))
	})
}
