// Package logging provides leveled logging with environment-based
// configuration (GALLERY_LOG_LEVEL, DEBUG) and optional file output.
package logging
