package media

import (
	"path/filepath"
	"strings"
)

// Kind represents the type of a media file.
type Kind string

const (
	// KindImage represents an image file.
	KindImage Kind = "image"
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindOther represents an unsupported file type.
	KindOther Kind = "other"
)

// URL prefixes for serving media and thumbnails. Images are served directly
// so their thumbnail URL is the media URL; videos go through the thumbnail
// service.
const (
	MediaURLPrefix     = "/media/"
	ThumbnailURLPrefix = "/thumbnail/"
)

// Record is the normalized description of one indexed media file. Immutable
// after creation; width/height are best-effort until a thumbnail has actually
// been generated.
type Record struct {
	RelativePath string `json:"path"`
	Kind         Kind   `json:"kind"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".webp": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true,
	".mkv": true, ".webm": true, ".flv": true,
}

// KindForPath returns the media kind for a filename based on its extension.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if ImageExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindOther
}

// IsVideo reports whether the filename has a supported video extension.
func IsVideo(path string) bool {
	return KindForPath(path) == KindVideo
}

// IsImage reports whether the filename has a supported image extension.
func IsImage(path string) bool {
	return KindForPath(path) == KindImage
}

// MimeType returns the MIME type for a media file extension.
func MimeType(path string) string {
	mimeTypes := map[string]string{
		".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
		".gif": "image/gif", ".bmp": "image/bmp", ".webp": "image/webp",
		".mp4": "video/mp4", ".mkv": "video/x-matroska", ".avi": "video/x-msvideo",
		".mov": "video/quicktime", ".webm": "video/webm", ".flv": "video/x-flv",
	}
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ThumbnailURLFor returns the thumbnail URL for a relative media path:
// videos map to the thumbnail service, images to the media URL itself.
func ThumbnailURLFor(relativePath string) string {
	if IsVideo(relativePath) {
		return ThumbnailURLPrefix + filepath.ToSlash(relativePath)
	}
	return MediaURLPrefix + filepath.ToSlash(relativePath)
}
