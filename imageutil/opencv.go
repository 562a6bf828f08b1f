//go:build gocv

package imageutil

import (
	"fmt"

	"gocv.io/x/gocv"
)

// OpenCVAvailable reports whether this build can decode with OpenCV.
const OpenCVAvailable = true

// LoadImageOpenCV decodes an image with OpenCV's imread, which reads
// formats the pure Go decoders do not (WebP variants, JPEG 2000, PPM,
// OpenEXR, ...). Only built with the gocv tag.
func LoadImageOpenCV(path string) (*RGBAImage, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("could not read image from %s", path)
	}
	defer mat.Close()

	return matToRGBA(mat), nil
}

// matToRGBA converts a gocv.Mat (BGR) to RGBAImage (RGB).
func matToRGBA(mat gocv.Mat) *RGBAImage {
	height, width := mat.Rows(), mat.Cols()
	img := NewRGBAImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// gocv uses BGR format
			vec := mat.GetVecbAt(y, x)
			img.SetRGB(x, y, RGB{R: vec[2], G: vec[1], B: vec[0]})
		}
	}
	return img
}
