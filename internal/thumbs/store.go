package thumbs

import (
	"context"
	"crypto/md5"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// BoxWidth and BoxHeight bound generated thumbnails; frames are
	// downscaled into this box preserving aspect ratio.
	BoxWidth  = 300
	BoxHeight = 200

	// maxNameLength is the longest sanitized filename stored as-is; longer
	// names collapse to an md5 hash to respect filesystem name limits.
	maxNameLength = 200
)

// Store maps media files to deterministic on-disk thumbnail paths, validates
// existing thumbnails, and renders missing ones. The thumbnail directory is
// flat: source path separators are folded into the filename.
type Store struct {
	mediaRoot string
	thumbDir  string
	extractor FrameExtractor
}

// NewStore creates a Store writing thumbnails under thumbDir for media files
// under mediaRoot. The directory is created if needed. extractor supplies
// single video frames; pass NewFFmpegExtractor() in production.
func NewStore(mediaRoot, thumbDir string, extractor FrameExtractor) *Store {
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		logging.Warn("failed to create thumbnail directory %s: %v", thumbDir, err)
	}
	return &Store{
		mediaRoot: mediaRoot,
		thumbDir:  thumbDir,
		extractor: extractor,
	}
}

// Name returns the deterministic thumbnail filename for a media-root-relative
// path. Every component deriving a thumbnail location must agree on this
// string.
func Name(relativePath string) string {
	safe := strings.NewReplacer("\\", "_", "/", "_").Replace(relativePath)
	if len(safe) > maxNameLength {
		safe = fmt.Sprintf("%x%s", md5.Sum([]byte(safe)), filepath.Ext(safe))
	}
	return safe + ".png"
}

// Dir returns the thumbnail directory.
func (s *Store) Dir() string {
	return s.thumbDir
}

// PathFor returns the absolute thumbnail path for a media-root-relative path.
func (s *Store) PathFor(relativePath string) string {
	return filepath.Join(s.thumbDir, Name(relativePath))
}

// SourcePathFor returns the absolute media path for a relative path.
func (s *Store) SourcePathFor(relativePath string) string {
	return filepath.Join(s.mediaRoot, relativePath)
}

// Resolve returns the thumbnail path for relativePath if a valid (non-zero
// size) thumbnail exists on disk. A zero-size file is corrupt: it is deleted
// best-effort and reported as absent. Resolve never generates.
func (s *Store) Resolve(relativePath string) (string, bool) {
	path := s.PathFor(relativePath)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if info.Size() == 0 {
		logging.Warn("removing corrupt zero-size thumbnail: %s", path)
		metrics.ThumbnailCorruptRemoved.Inc()
		if err := os.Remove(path); err != nil {
			logging.Warn("failed to remove corrupt thumbnail %s: %v", path, err)
		}
		return "", false
	}

	return path, true
}

// Ensure returns the thumbnail path for relativePath, rendering it
// synchronously if absent. The caller blocks for the duration of one render.
// On any failure the supplied placeholder is returned instead; a missing
// source file is absence, not an error.
func (s *Store) Ensure(ctx context.Context, relativePath, placeholder string) string {
	if path, ok := s.Resolve(relativePath); ok {
		return path
	}

	src := s.SourcePathFor(relativePath)
	if _, err := os.Stat(src); err != nil {
		logging.Debug("source missing for thumbnail request: %s", relativePath)
		metrics.ThumbnailGenerationsTotal.WithLabelValues("sync", "error_not_found").Inc()
		return placeholder
	}

	dest := s.PathFor(relativePath)
	if err := s.Generate(ctx, src, dest); err != nil {
		logging.Warn("synchronous thumbnail generation failed for %s: %v", relativePath, err)
		metrics.ThumbnailGenerationsTotal.WithLabelValues("sync", "error").Inc()
		return placeholder
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues("sync", "success").Inc()
	return dest
}

// Generate renders one thumbnail: extract a frame from the source video,
// downscale into the bounding box, encode as PNG, and publish atomically via
// temp-then-rename so a concurrent Resolve never observes a partial file.
func (s *Store) Generate(ctx context.Context, sourcePath, destPath string) error {
	start := time.Now()
	defer func() {
		metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	frame, err := s.extractor.ExtractFrame(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("frame extraction failed: %w", err)
	}

	thumb := imaging.Fit(frame, BoxWidth, BoxHeight, imaging.Lanczos)

	tmp, err := os.CreateTemp(s.thumbDir, ".thumb-*.png.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, thumb); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush thumbnail: %w", err)
	}

	// CreateTemp uses 0600; thumbnails are world-readable artifacts.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logging.Warn("failed to chmod thumbnail %s: %v", tmpName, err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish thumbnail: %w", err)
	}

	logging.Debug("thumbnail generated: %s -> %s (%v)", sourcePath, destPath, time.Since(start))
	return nil
}
