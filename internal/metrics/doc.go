// Package metrics defines the Prometheus instrumentation for every
// subsystem (scanner, cache, thumbnails, worker pool, preload, HTTP) and a
// standalone scrape server.
package metrics
