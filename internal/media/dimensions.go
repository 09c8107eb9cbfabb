package media

import (
	"image"
	"os"
	"regexp"
	"strconv"

	"home-gallery/internal/logging"

	// Header decoders for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Dimension defaults and bounds. Defaults are used when a scan is asked to
// skip per-file I/O, or when every cheaper source fails.
const (
	// ThumbnailBoxWidth and ThumbnailBoxHeight bound generated thumbnails.
	ThumbnailBoxWidth  = 300
	ThumbnailBoxHeight = 200

	// Thumb169Width and Thumb169Height are the 16:9 thumbnail defaults for
	// videos with no better dimension source.
	Thumb169Width  = 300
	Thumb169Height = 169

	// MinPlausibleDimension and MaxPlausibleDimension bound values parsed
	// from filenames.
	MinPlausibleDimension = 10
	MaxPlausibleDimension = 50000

	// DefaultVideoWidth and DefaultVideoHeight are used for fast scans.
	DefaultVideoWidth  = 1920
	DefaultVideoHeight = 1080

	// DefaultImageWidth and DefaultImageHeight are used for fast scans.
	DefaultImageWidth  = 1600
	DefaultImageHeight = 1200

	// FallbackWidth and FallbackHeight apply when the file is missing.
	FallbackWidth  = 800
	FallbackHeight = 600
)

// filenameDimensionPattern matches WIDTHxHEIGHT embedded in filenames,
// e.g. 1920x1080_abc.jpg or photo_958x1278.png.
var filenameDimensionPattern = regexp.MustCompile(`(\d{3,5})[xX](\d{3,5})`)

// DimensionsFromFilename extracts a WIDTHxHEIGHT pattern from a filename.
// Values outside plausible bounds are rejected.
func DimensionsFromFilename(filename string) (width, height int, ok bool) {
	m := filenameDimensionPattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, 0, false
	}

	width, _ = strconv.Atoi(m[1])
	height, _ = strconv.Atoi(m[2])

	if width < MinPlausibleDimension || width > MaxPlausibleDimension ||
		height < MinPlausibleDimension || height > MaxPlausibleDimension {
		return 0, 0, false
	}

	return width, height, true
}

// ImageDimensions reads just the image header to obtain true dimensions
// without a full decode.
func ImageDimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("failed to close image file %s: %v", path, cerr)
		}
	}()

	config, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return config.Width, config.Height, nil
}

// scaleToThumbnailBox scales source dimensions into the 300-wide thumbnail
// box preserving aspect ratio, matching the size a generated thumbnail will
// actually have.
func scaleToThumbnailBox(width, height int) (int, int) {
	if width >= height {
		return ThumbnailBoxWidth, ThumbnailBoxWidth * height / width
	}
	return ThumbnailBoxWidth * width / height, ThumbnailBoxWidth
}

// resolveDimensions applies the cheapest-first dimension ladder for one file:
// existing thumbnail, filename pattern, image header, per-kind default.
// thumbPath may be empty when no thumbnail location is known.
func resolveDimensions(fullPath, thumbPath string, kind Kind) (int, int) {
	if _, err := os.Stat(fullPath); err != nil {
		return FallbackWidth, FallbackHeight
	}

	if kind == KindVideo {
		if thumbPath != "" {
			if info, err := os.Stat(thumbPath); err == nil && info.Size() > 0 {
				if w, h, err := ImageDimensions(thumbPath); err == nil {
					return w, h
				}
			}
		}
		if w, h, ok := DimensionsFromFilename(fullPath); ok {
			return scaleToThumbnailBox(w, h)
		}
		return Thumb169Width, Thumb169Height
	}

	if w, h, ok := DimensionsFromFilename(fullPath); ok {
		return w, h
	}
	if w, h, err := ImageDimensions(fullPath); err == nil {
		return w, h
	}
	return DefaultImageWidth, DefaultImageHeight
}

// defaultDimensions returns the fixed per-kind defaults used when a scan
// skips per-file dimension I/O.
func defaultDimensions(kind Kind) (int, int) {
	if kind == KindVideo {
		return DefaultVideoWidth, DefaultVideoHeight
	}
	return DefaultImageWidth, DefaultImageHeight
}
