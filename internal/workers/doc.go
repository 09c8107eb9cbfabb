// Package workers runs background thumbnail generation on a fixed pool of
// goroutines fed from a bounded queue, plus CPU-aware pool sizing that
// respects container limits via GOMAXPROCS.
package workers
