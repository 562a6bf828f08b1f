package imageutil

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationBox averages every source pixel a destination pixel
	// covers (area averaging). This is the default for downsampling to
	// glyph cells.
	InterpolationBox Interpolation = iota

	// InterpolationCatmullRom uses the Catmull-Rom cubic kernel.
	// Sharper than box, may ring slightly at hard edges.
	InterpolationCatmullRom

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

var interpolationNames = map[Interpolation]string{
	InterpolationBox:        "box",
	InterpolationCatmullRom: "catmullrom",
	InterpolationLinear:     "bilinear",
	InterpolationNearest:    "nearest",
}

func (i Interpolation) String() string {
	if name, ok := interpolationNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation resolves an interpolation by name.
func ParseInterpolation(name string) (Interpolation, error) {
	name = strings.ToLower(name)
	for interp, n := range interpolationNames {
		if n == name {
			return interp, nil
		}
	}
	if name == "area" {
		return InterpolationBox, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q, options are "+
		"box, catmullrom, bilinear or nearest", name)
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method. The result depends only on the source
// pixels and the target size.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	if interp == InterpolationBox {
		return resizeBox(img, width, height)
	}

	dst := NewRGBAImage(width, height)
	dstRect := image.Rect(0, 0, width, height)

	var scaler draw.Scaler
	switch interp {
	case InterpolationCatmullRom:
		scaler = draw.CatmullRom
	case InterpolationLinear:
		scaler = draw.BiLinear
	case InterpolationNearest:
		scaler = draw.NearestNeighbor
	default:
		scaler = draw.CatmullRom
	}

	scaler.Scale(dst.RGBA, dstRect, img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// resizeBox resamples with gift's box filter.
func resizeBox(img *RGBAImage, width, height int) *RGBAImage {
	g := gift.New(gift.Resize(width, height, gift.BoxResampling))
	dst := NewRGBAImage(width, height)
	g.Draw(dst.RGBA, img.RGBA)
	return dst
}
