package shared

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds a collision-free storage key under prefix that keeps the
// original file extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return strings.TrimSuffix(prefix, "/") + "/" + uuid.NewString() + ext
}

// AllowedImageTypes lists the content types accepted for image uploads.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AllowedVideoTypes lists the content types accepted for video uploads.
var AllowedVideoTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
}
