package media

import (
	"os"
	"path/filepath"
	"strings"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the media tree and invalidates cached scans for any
// directory whose contents change, so cached listings never outlive a
// directory change by more than the event delivery latency. Blocks until
// stop is closed; run it on its own goroutine.
func (s *Scanner) Watch(stop <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("failed to create file watcher: %v", err)
		metrics.ScannerWatcherErrors.Inc()
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	watchCount := s.addDirectoriesToWatcher(watcher)
	logging.Debug("scan cache watcher started, watching %d directories", watchCount)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleWatcherEvent(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error: %v", err)
			metrics.ScannerWatcherErrors.Inc()

		case <-stop:
			logging.Debug("scan cache watcher stopped")
			return
		}
	}
}

// addDirectoriesToWatcher registers every non-hidden directory under the
// media root.
func (s *Scanner) addDirectoriesToWatcher(watcher *fsnotify.Watcher) int {
	watchCount := 0
	err := filepath.Walk(s.mediaRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			if addErr := watcher.Add(path); addErr != nil {
				logging.Warn("failed to watch %s: %v", path, addErr)
				metrics.ScannerWatcherErrors.Inc()
			} else {
				watchCount++
			}
		}
		return nil
	})
	if err != nil {
		logging.Error("failed to walk media directory for watcher: %v", err)
		metrics.ScannerWatcherErrors.Inc()
	}
	return watchCount
}

// handleWatcherEvent invalidates affected cache lines and keeps the watch
// set current as directories appear.
func (s *Scanner) handleWatcherEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if strings.Contains(event.Name, string(filepath.Separator)+".") {
		return
	}

	metrics.ScannerWatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	// The scan lines keyed on this directory or any ancestor are now stale.
	dir := filepath.Dir(event.Name)
	if n := s.InvalidatePath(dir); n > 0 {
		logging.Debug("invalidated %d cached scans after change in %s", n, dir)
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				logging.Warn("failed to watch new directory %s: %v", event.Name, err)
				metrics.ScannerWatcherErrors.Inc()
			}
		}
	}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
