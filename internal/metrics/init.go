package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, source := range []string{"cache", "walk"} {
		for _, status := range []string{"success", "error"} {
			ScannerScansTotal.WithLabelValues(source, status)
		}
	}

	for _, eventType := range []string{"create", "write", "remove", "rename", "chmod", "unknown"} {
		ScannerWatcherEventsTotal.WithLabelValues(eventType)
	}

	for _, name := range []string{"scan"} {
		CacheHits.WithLabelValues(name)
		CacheMisses.WithLabelValues(name)
		CacheEvictions.WithLabelValues(name)
		CacheEntries.WithLabelValues(name)
	}

	for _, trigger := range []string{"sync", "worker"} {
		for _, status := range []string{"success", "error", "error_not_found"} {
			ThumbnailGenerationsTotal.WithLabelValues(trigger, status)
		}
	}
}
