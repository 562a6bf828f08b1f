package imageutil

import "github.com/disintegration/gift"

// Adjustments are tonal corrections applied to the resampled image
// before glyphs are chosen. The zero value changes nothing.
type Adjustments struct {
	// Gamma brightens midtones when > 1 and darkens them when < 1.
	// 0 and 1 leave the image unchanged.
	Gamma float32
	// Contrast in percent, -100 to 100.
	Contrast float32
	// Invert swaps light and dark, for light text on a dark terminal.
	Invert bool
}

// IsZero reports whether a leaves images unchanged.
func (a Adjustments) IsZero() bool {
	return (a.Gamma == 0 || a.Gamma == 1) && a.Contrast == 0 && !a.Invert
}

func (a Adjustments) filters() []gift.Filter {
	var filters []gift.Filter
	if a.Gamma != 0 && a.Gamma != 1 {
		filters = append(filters, gift.Gamma(a.Gamma))
	}
	if a.Contrast != 0 {
		filters = append(filters, gift.Contrast(a.Contrast))
	}
	if a.Invert {
		filters = append(filters, gift.Invert())
	}
	return filters
}

// Apply returns img with the adjustments applied. img itself is not
// modified; when there is nothing to do img is returned as is.
func (a Adjustments) Apply(img *RGBAImage) *RGBAImage {
	if a.IsZero() {
		return img
	}
	g := gift.New(a.filters()...)
	dst := NewRGBAImage(img.Width(), img.Height())
	g.Draw(dst.RGBA, img.RGBA)
	return dst
}
