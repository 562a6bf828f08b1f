//go:build !gocv

package imageutil

import "errors"

// OpenCVAvailable reports whether this build can decode with OpenCV.
const OpenCVAvailable = false

// ErrOpenCVUnavailable is returned by LoadImageOpenCV in builds without
// the gocv tag.
var ErrOpenCVUnavailable = errors.New("built without OpenCV support (rebuild with -tags gocv)")

// LoadImageOpenCV always fails in builds without the gocv tag.
func LoadImageOpenCV(path string) (*RGBAImage, error) {
	return nil, ErrOpenCVUnavailable
}
