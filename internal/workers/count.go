package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count sized to the CPUs actually available.
// GOMAXPROCS reflects container CPU limits (Go 1.19+), unlike
// runtime.NumCPU which reports the host.
//
// The multiplier adjusts for task characteristics: 1.0 for CPU-bound work,
// 2.0 for I/O-bound, 1.5 for mixed. limit caps the result; 0 means no cap.
//
// The GALLERY_WORKER_THREADS environment variable overrides the calculation.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("GALLERY_WORKER_THREADS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)
	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}
	return count
}

// ForMixed returns a worker count for mixed CPU/I/O tasks such as thumbnail
// generation (read file, decode, resize, write result).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
