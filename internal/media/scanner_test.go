package media

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"home-gallery/internal/cache"
)

// makeLibrary creates a small media tree: three images, two videos, and one
// unsupported file.
func makeLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := []string{"a.png", "b.jpg", "c.webp", "d.mp4", "e.mov", "ignore.txt"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestScanner(root string, ttl time.Duration) *Scanner {
	return NewScanner(root, cache.New[ScanKey, []Record]("dirscan", ttl), nil)
}

func TestScanMixedDirectory(t *testing.T) {
	dir := makeLibrary(t)
	s := newTestScanner(dir, time.Minute)

	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}

	byPath := make(map[string]Record)
	for _, rec := range records {
		byPath[rec.RelativePath] = rec
	}

	for _, name := range []string{"a.png", "b.jpg", "c.webp"} {
		rec, ok := byPath[name]
		if !ok {
			t.Fatalf("image %s missing from scan", name)
		}
		if rec.Kind != KindImage {
			t.Errorf("%s: kind = %v, want image", name, rec.Kind)
		}
		if rec.ThumbnailURL != MediaURLPrefix+name {
			t.Errorf("%s: thumbnail URL = %q, want media URL %q", name, rec.ThumbnailURL, MediaURLPrefix+name)
		}
	}

	for _, name := range []string{"d.mp4", "e.mov"} {
		rec, ok := byPath[name]
		if !ok {
			t.Fatalf("video %s missing from scan", name)
		}
		if rec.Kind != KindVideo {
			t.Errorf("%s: kind = %v, want video", name, rec.Kind)
		}
		if !strings.HasPrefix(rec.ThumbnailURL, ThumbnailURLPrefix) {
			t.Errorf("%s: thumbnail URL = %q, want prefix %q", name, rec.ThumbnailURL, ThumbnailURLPrefix)
		}
	}

	if _, ok := byPath["ignore.txt"]; ok {
		t.Error("unsupported file included in scan")
	}
}

func TestScanFastDimensionDefaults(t *testing.T) {
	dir := makeLibrary(t)
	s := newTestScanner(dir, time.Minute)

	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	for _, rec := range records {
		switch rec.Kind {
		case KindVideo:
			if rec.Width != DefaultVideoWidth || rec.Height != DefaultVideoHeight {
				t.Errorf("%s: got %dx%d, want video defaults", rec.RelativePath, rec.Width, rec.Height)
			}
		case KindImage:
			if rec.Width != DefaultImageWidth || rec.Height != DefaultImageHeight {
				t.Errorf("%s: got %dx%d, want image defaults", rec.RelativePath, rec.Width, rec.Height)
			}
		}
	}
}

func TestScanRecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "vacation", "day1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "beach.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner(dir, time.Minute)
	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	want := filepath.Join("vacation", "day1", "beach.jpg")
	if records[0].RelativePath != want {
		t.Errorf("relative path = %q, want %q", records[0].RelativePath, want)
	}
}

func TestScanSkipsHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".trash")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(hidden, "old.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "visible.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner(dir, time.Minute)
	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(records) != 1 || records[0].RelativePath != "visible.jpg" {
		t.Errorf("got %v, want only visible.jpg", records)
	}
}

func TestScanBrokenSymlinkCountedNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliable on windows")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "good.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "dangling.mp4")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	s := newTestScanner(dir, time.Minute)
	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(records) != 1 || records[0].RelativePath != "good.jpg" {
		t.Errorf("got %v, want only good.jpg", records)
	}
}

func TestScanMissingRootPropagates(t *testing.T) {
	s := newTestScanner("/nonexistent", time.Minute)
	if _, err := s.Scan(filepath.Join("/nonexistent", "gallery"), false, false); err == nil {
		t.Error("expected error scanning a missing root")
	}
}

func TestScanCacheHit(t *testing.T) {
	dir := makeLibrary(t)
	s := newTestScanner(dir, time.Minute)

	first, err := s.Scan(dir, true, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	// A file added after caching is invisible until the TTL expires or the
	// entry is invalidated.
	if err := os.WriteFile(filepath.Join(dir, "later.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := s.Scan(dir, true, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("cached scan returned %d records, want %d", len(second), len(first))
	}

	// Uncached scan sees the new file.
	fresh, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(fresh) != len(first)+1 {
		t.Errorf("uncached scan returned %d records, want %d", len(fresh), len(first)+1)
	}
}

func TestScanEmptyResultNeverCached(t *testing.T) {
	dir := t.TempDir() // no media files
	c := cache.New[ScanKey, []Record]("dirscan", time.Minute)
	s := NewScanner(dir, c, nil)

	records, err := s.Scan(dir, true, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
	if c.Len() != 0 {
		t.Error("empty scan result was cached")
	}

	// A file that appears right after the empty scan is visible immediately.
	if err := os.WriteFile(filepath.Join(dir, "new.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err = s.Scan(dir, true, false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestScanDimensionLinesCachedIndependently(t *testing.T) {
	dir := makeLibrary(t)
	c := cache.New[ScanKey, []Record]("dirscan", time.Minute)
	s := NewScanner(dir, c, nil)

	if _, err := s.Scan(dir, true, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Scan(dir, true, true); err != nil {
		t.Fatal(err)
	}

	if c.Len() != 2 {
		t.Errorf("cache has %d entries, want 2 independent lines", c.Len())
	}
}

func TestSortedDoesNotMutateInput(t *testing.T) {
	dir := t.TempDir()
	names := []string{"one.jpg", "two.jpg", "three.jpg"}
	for i, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	s := newTestScanner(dir, time.Minute)
	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatal(err)
	}

	original := make([]Record, len(records))
	copy(original, records)

	sorted := s.Sorted(records, dir, SortNew)
	if sorted[0].RelativePath != "three.jpg" {
		t.Errorf("newest first = %q, want three.jpg", sorted[0].RelativePath)
	}

	for i := range records {
		if records[i] != original[i] {
			t.Fatal("Sorted mutated its input")
		}
	}
}

func TestSortedNewDegradesOnStatFailure(t *testing.T) {
	records := []Record{
		{RelativePath: "gone1.jpg", Kind: KindImage},
		{RelativePath: "gone2.jpg", Kind: KindImage},
	}

	s := newTestScanner(t.TempDir(), time.Minute)
	sorted := s.Sorted(records, "/nonexistent-base", SortNew)
	if len(sorted) != 2 {
		t.Errorf("degraded sort returned %d records, want 2", len(sorted))
	}
}

func TestSortedRandomKeepsAllRecords(t *testing.T) {
	dir := makeLibrary(t)
	s := newTestScanner(dir, time.Minute)

	records, err := s.Scan(dir, false, false)
	if err != nil {
		t.Fatal(err)
	}

	shuffled := s.Sorted(records, dir, SortRandom)
	if len(shuffled) != len(records) {
		t.Fatalf("shuffle lost records: %d != %d", len(shuffled), len(records))
	}

	seen := make(map[string]bool)
	for _, rec := range shuffled {
		seen[rec.RelativePath] = true
	}
	for _, rec := range records {
		if !seen[rec.RelativePath] {
			t.Errorf("record %s lost in shuffle", rec.RelativePath)
		}
	}
}

func TestRebase(t *testing.T) {
	records := []Record{
		{RelativePath: "clip.mp4", Kind: KindVideo, ThumbnailURL: "/thumbnail/clip.mp4"},
		{RelativePath: "pic.jpg", Kind: KindImage, ThumbnailURL: "/media/pic.jpg"},
	}

	rebased := Rebase(records, "vacation")

	if rebased[0].RelativePath != filepath.Join("vacation", "clip.mp4") {
		t.Errorf("video path = %q", rebased[0].RelativePath)
	}
	if rebased[0].ThumbnailURL != "/thumbnail/vacation/clip.mp4" {
		t.Errorf("video thumbnail URL = %q", rebased[0].ThumbnailURL)
	}
	if rebased[1].ThumbnailURL != "/media/vacation/pic.jpg" {
		t.Errorf("image thumbnail URL = %q", rebased[1].ThumbnailURL)
	}

	// Original untouched
	if records[0].RelativePath != "clip.mp4" {
		t.Error("Rebase mutated its input")
	}
}

func TestListSubfolders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha", "beta", ".hidden"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "file.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	folders, err := ListSubfolders(dir)
	if err != nil {
		t.Fatalf("ListSubfolders() error: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("got %v, want [alpha beta]", folders)
	}
}

func TestInvalidatePath(t *testing.T) {
	dir := makeLibrary(t)
	c := cache.New[ScanKey, []Record]("dirscan", time.Minute)
	s := NewScanner(dir, c, nil)

	if _, err := s.Scan(dir, true, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Scan(dir, true, true); err != nil {
		t.Fatal(err)
	}

	// A change inside the scanned tree invalidates both cache lines.
	removed := s.InvalidatePath(dir)
	if removed != 2 {
		t.Errorf("InvalidatePath removed %d entries, want 2", removed)
	}
}
