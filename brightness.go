package pic2ascii

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wbrown/pic2ascii/imageutil"
)

// BrightnessMethod maps an opaque sRGB pixel to a brightness in [0,1],
// where 0 is black and 1 is white.
type BrightnessMethod interface {
	Brightness(r, g, b uint8) float64
	Name() string
}

// LumaMethod is BT.601 luma, the same weighting the grayscale
// conversion in imageutil uses.
type LumaMethod struct{}

func (LumaMethod) Brightness(r, g, b uint8) float64 {
	return imageutil.Luma(r, g, b)
}

func (LumaMethod) Name() string { return "luma" }

// LightnessMethod is HSL lightness, (max+min)/2 of the channels.
type LightnessMethod struct{}

func (LightnessMethod) Brightness(r, g, b uint8) float64 {
	_, _, l := colorfulRGB(r, g, b).Hsl()
	return clamp01(l)
}

func (LightnessMethod) Name() string { return "lightness" }

// LabMethod is CIE L* scaled to [0,1].
type LabMethod struct{}

func (LabMethod) Brightness(r, g, b uint8) float64 {
	l, _, _ := colorfulRGB(r, g, b).Lab()
	return clamp01(l)
}

func (LabMethod) Name() string { return "lab" }

// ParseBrightnessMethod resolves a method by its Name.
func ParseBrightnessMethod(name string) (BrightnessMethod, error) {
	switch strings.ToLower(name) {
	case "", "luma":
		return LumaMethod{}, nil
	case "lightness", "hsl":
		return LightnessMethod{}, nil
	case "lab":
		return LabMethod{}, nil
	}
	return nil, fmt.Errorf("unknown brightness method %q, options are "+
		"luma, lightness or lab", name)
}

func colorfulRGB(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
