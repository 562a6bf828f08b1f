package pic2ascii

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/font/opentype"
)

// Embedded TrueType fonts, addressable by name.
var embeddedFonts = map[string][]byte{
	"gomono":    gomono.TTF,
	"goregular": goregular.TTF,
}

// LoadFace opens a font face by name at the given point size.
//
// Names resolve in this order:
//   - "gomono" and "goregular": embedded Go fonts
//   - "inconsolata": the 8x16 Inconsolata bitmap face (size is ignored)
//   - a path ending in .ttf: parsed with freetype
//   - a path ending in .otf or .ttc: parsed with x/image/font/opentype
//
// The caller owns the returned face and must Close it.
func LoadFace(name string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, &ConfigurationError{
			Op:  "load font " + name,
			Err: fmt.Errorf("font size must be positive, got %v", size),
		}
	}

	if ttf, ok := embeddedFonts[name]; ok {
		return newTrueTypeFace(name, ttf, size)
	}
	if name == "inconsolata" {
		return inconsolata.Regular8x16, nil
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf":
		fontBytes, err := os.ReadFile(name)
		if err != nil {
			return nil, &ConfigurationError{Op: "load font " + name, Err: err}
		}
		return newTrueTypeFace(name, fontBytes, size)
	case ".otf", ".ttc":
		return loadOpenTypeFace(name, size)
	}
	return nil, &ConfigurationError{Op: "load font " + name, Err: ErrUnknownFont}
}

// newTrueTypeFace parses TrueType bytes and opens a hinted face.
func newTrueTypeFace(name string, ttf []byte, size float64) (font.Face, error) {
	ttFont, err := freetype.ParseFont(ttf)
	if err != nil {
		return nil, &ConfigurationError{Op: "parse font " + name, Err: err}
	}
	return truetype.NewFace(ttFont, &truetype.Options{
		Size:    size,
		DPI:     ReferenceDPI,
		Hinting: font.HintingFull,
	}), nil
}

func loadOpenTypeFace(path string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Op: "load font " + path, Err: err}
	}

	var otFont *opentype.Font
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		collection, err := opentype.ParseCollection(fontBytes)
		if err != nil {
			return nil, &ConfigurationError{Op: "parse font " + path, Err: err}
		}
		// The first face of a collection is the regular style.
		otFont, err = collection.Font(0)
		if err != nil {
			return nil, &ConfigurationError{Op: "parse font " + path, Err: err}
		}
	} else {
		otFont, err = opentype.Parse(fontBytes)
		if err != nil {
			return nil, &ConfigurationError{Op: "parse font " + path, Err: err}
		}
	}

	face, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     ReferenceDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &ConfigurationError{Op: "open face " + path, Err: err}
	}
	return face, nil
}

// checkFixedPitch compares the advance of a narrow-glyph string with a
// wide-glyph string of the same length. Any difference is an error.
func checkFixedPitch(face font.Face) error {
	narrow := font.MeasureString(face, "iii")
	wide := font.MeasureString(face, "WWW")
	if narrow != wide {
		return fmt.Errorf("%w: \"iii\" measures %v, \"WWW\" measures %v",
			ErrNotFixedPitch, narrow, wide)
	}
	return nil
}
