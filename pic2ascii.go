// Package pic2ascii converts raster images into monospace text. Every
// glyph of a candidate set is rendered once with a fixed-pitch font to
// measure how dark it looks, and each downsampled pixel of the source
// image is then replaced by the glyph whose calibrated density matches
// the pixel's brightness.
package pic2ascii

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	// ReferenceFont is the embedded fixed-pitch font used for calibration.
	ReferenceFont = "gomono"
	// ReferenceFontSize is the calibration point size.
	ReferenceFontSize = 12.0
	// ReferenceDPI converts points to pixels on the calibration surface.
	// At 96 DPI a 12pt face is 16px tall.
	ReferenceDPI = 96.0

	// AspectCompensation is the width:height ratio of a glyph cell.
	// Cells are nominally twice as tall as they are wide.
	AspectCompensation = 0.5

	// DefaultWidth is the column width used when the caller has none.
	DefaultWidth = 80

	// ReferenceGlyph is the full-density glyph that sizes the cell.
	ReferenceGlyph = '█'

	// Padding added to the measured reference cell.
	cellPadX = 2
	cellPadY = 4
)

var (
	// Logger receives debug output from table calibration.
	Logger logrus.FieldLogger = logrus.StandardLogger()

	// DefaultGlyphs is the candidate glyph set in calibration order:
	// printable ASCII followed by the Latin-1 code points 176, 177, 178,
	// 219 and 254. The order decides which glyph wins when two glyphs
	// render to the same density.
	DefaultGlyphs = append(asciiPrintable(), '°', '±', '²', 'Û', 'þ')

	// CP437Glyphs is DefaultGlyphs with the extended code points read as
	// code page 437 shade and block characters.
	CP437Glyphs = append(asciiPrintable(), '░', '▒', '▓', '█', '■')

	lineSeparator = platformLineSeparator(runtime.GOOS)
)

func asciiPrintable() []rune {
	glyphs := make([]rune, 0, 127-32+5)
	for r := rune(32); r <= rune(126); r++ {
		glyphs = append(glyphs, r)
	}
	return glyphs
}

// GlyphSet returns a copy of a named candidate glyph set.
func GlyphSet(name string) ([]rune, error) {
	switch name {
	case "", "default", "latin1":
		return append([]rune(nil), DefaultGlyphs...), nil
	case "cp437":
		return append([]rune(nil), CP437Glyphs...), nil
	}
	return nil, &ConfigurationError{Op: "glyph set " + name, Err: ErrUnknownGlyphSet}
}

func platformLineSeparator(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}
