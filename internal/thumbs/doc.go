// Package thumbs manages the on-disk thumbnail store: deterministic naming,
// validation with corruption recovery, synchronous on-demand generation, and
// midpoint frame extraction via ffmpeg.
package thumbs
