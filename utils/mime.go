package utils

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MimeTypeJPEG is regular jpgs.
	MimeTypeJPEG = "image/jpeg"

	// MimeTypePNG is regular pngs.
	MimeTypePNG = "image/png"
)

// MimeTypeFromPath returns the image MIME type implied by the extension of path.
func MimeTypeFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return MimeTypeJPEG, nil
	case ".png":
		return MimeTypePNG, nil
	default:
		return "", errors.Errorf("cannot tell image type of %q; use .jpg or .png", path)
	}
}
