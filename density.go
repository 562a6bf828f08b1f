package pic2ascii

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DensityEntry pairs a glyph with the mean brightness of its rendered
// cell: 1 for an empty cell, lower for darker glyphs.
type DensityEntry struct {
	Density float64
	Glyph   rune
}

// DensityTable maps calibrated densities to glyphs. Keys are unique; when
// two glyphs measure the same density the first one inserted is kept. A
// table is immutable once built and may be shared between goroutines.
type DensityTable struct {
	// Font and Size record which face the table was calibrated with.
	Font string
	Size float64

	entries    *orderedMap[float64, rune]
	minDensity float64
}

// NewDensityTable builds a table from entries in order. Entries with a
// density outside [0,1] are rejected; duplicate densities after the first
// are dropped.
func NewDensityTable(entries ...DensityEntry) (*DensityTable, error) {
	t := &DensityTable{
		entries:    newOrderedMap[float64, rune](len(entries)),
		minDensity: 1,
	}
	for _, e := range entries {
		if !(e.Density >= 0 && e.Density <= 1) {
			return nil, fmt.Errorf("glyph %q: density %v out of range [0,1]",
				e.Glyph, e.Density)
		}
		t.insert(e.Density, e.Glyph)
	}
	if t.Len() == 0 {
		return nil, &ConfigurationError{Op: "density table", Err: ErrEmptyGlyphSet}
	}
	return t, nil
}

func (t *DensityTable) insert(density float64, glyph rune) {
	if t.entries.SetIfAbsent(density, glyph) && density < t.minDensity {
		t.minDensity = density
	}
}

// Len returns the number of retained entries. Nil and zero-value
// tables have none.
func (t *DensityTable) Len() int {
	if t == nil || t.entries == nil {
		return 0
	}
	return t.entries.Len()
}

// MinDensity is the smallest density in the table (the darkest glyph).
func (t *DensityTable) MinDensity() float64 {
	return t.minDensity
}

// Glyph returns the glyph stored under an exact density key.
func (t *DensityTable) Glyph(density float64) (rune, bool) {
	if t.Len() == 0 {
		return 0, false
	}
	return t.entries.Get(density)
}

// Entries returns the retained entries in insertion order.
func (t *DensityTable) Entries() []DensityEntry {
	out := make([]DensityEntry, 0, t.Len())
	if t.Len() == 0 {
		return out
	}
	t.entries.Iterate(func(d float64, g rune) {
		out = append(out, DensityEntry{Density: d, Glyph: g})
	})
	return out
}

// Sorted returns the entries ordered by descending density, lightest
// glyph first.
func (t *DensityTable) Sorted() []DensityEntry {
	out := t.Entries()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Density > out[j].Density
	})
	return out
}

// Darkest returns the glyph with the smallest density.
func (t *DensityTable) Darkest() rune {
	if t.Len() == 0 {
		return 0
	}
	g, _ := t.entries.Get(t.minDensity)
	return g
}

// Threshold rescales a density so the table's darkest glyph sits at 0
// and an empty cell at 1. Pixels are compared against these values when
// choosing glyphs.
func (t *DensityTable) Threshold(density float64) float64 {
	return normalizeDensity(density, t.minDensity)
}

// BuildDensityTable renders every candidate glyph alone in a cell of the
// given fixed-pitch font and records its mean brightness. The result
// depends only on its arguments; see CachedDensityTable for the memoized
// form.
func BuildDensityTable(
	glyphs []rune,
	fontFace string,
	fontSize float64,
) (*DensityTable, error) {
	if len(glyphs) == 0 {
		return nil, &ConfigurationError{Op: "density table", Err: ErrEmptyGlyphSet}
	}

	face, err := LoadFace(fontFace, fontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	table, err := measureGlyphs(face, glyphs)
	if err != nil {
		return nil, &ConfigurationError{Op: "font " + fontFace, Err: err}
	}
	table.Font = fontFace
	table.Size = fontSize

	Logger.WithFields(logrus.Fields{
		"font":        fontFace,
		"size":        fontSize,
		"candidates":  len(glyphs),
		"entries":     table.Len(),
		"min_density": table.MinDensity(),
	}).Debug("calibrated glyph densities")
	return table, nil
}

// glyphCell is a scratch surface one glyph cell in size.
type glyphCell struct {
	img      *image.Gray
	baseline fixed.Int26_6
}

// newGlyphCell sizes a cell from the reference glyph's rendered bounds
// and the face's line metrics, plus fixed padding.
func newGlyphCell(face font.Face) *glyphCell {
	bounds, advance := font.BoundString(face, string(ReferenceGlyph))
	metrics := face.Metrics()

	width := max(advance.Ceil(), (bounds.Max.X - bounds.Min.X).Ceil())
	height := max((metrics.Ascent + metrics.Descent).Ceil(),
		(bounds.Max.Y - bounds.Min.Y).Ceil())

	return &glyphCell{
		img:      image.NewGray(image.Rect(0, 0, width+cellPadX, height+cellPadY)),
		baseline: fixed.I(metrics.Ascent.Ceil()),
	}
}

// density clears the cell, draws r in black and returns the mean
// brightness of the cell.
func (c *glyphCell) density(face font.Face, r rune) float64 {
	draw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: c.baseline},
	}
	d.DrawString(string(r))

	var total uint64
	for _, v := range c.img.Pix {
		total += uint64(v)
	}
	return float64(total) / 255 / float64(len(c.img.Pix))
}

// measureGlyphs checks the face is fixed-pitch and measures each glyph
// in order, keeping the first glyph seen for each density.
func measureGlyphs(face font.Face, glyphs []rune) (*DensityTable, error) {
	if err := checkFixedPitch(face); err != nil {
		return nil, err
	}

	cell := newGlyphCell(face)
	Logger.WithFields(logrus.Fields{
		"cell_width":  cell.img.Bounds().Dx(),
		"cell_height": cell.img.Bounds().Dy(),
	}).Debug("measured reference glyph cell")

	table := &DensityTable{
		entries:    newOrderedMap[float64, rune](len(glyphs)),
		minDensity: 1,
	}
	for _, r := range glyphs {
		table.insert(cell.density(face, r), r)
	}
	return table, nil
}

// GlyphSheet draws each glyph into its own calibration cell, exactly as
// BuildDensityTable measures it, and tiles the cells columns wide.
func GlyphSheet(
	glyphs []rune,
	fontFace string,
	fontSize float64,
	columns int,
) (*image.Gray, error) {
	if len(glyphs) == 0 {
		return nil, &ConfigurationError{Op: "glyph sheet", Err: ErrEmptyGlyphSet}
	}
	columns = max(columns, 1)

	face, err := LoadFace(fontFace, fontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	if err := checkFixedPitch(face); err != nil {
		return nil, &ConfigurationError{Op: "font " + fontFace, Err: err}
	}

	cell := newGlyphCell(face)
	cw, ch := cell.img.Bounds().Dx(), cell.img.Bounds().Dy()
	rows := (len(glyphs) + columns - 1) / columns

	sheet := image.NewGray(image.Rect(0, 0, columns*cw, rows*ch))
	draw.Draw(sheet, sheet.Bounds(), image.White, image.Point{}, draw.Src)
	for i, r := range glyphs {
		cell.density(face, r)
		x, y := (i%columns)*cw, (i/columns)*ch
		draw.Draw(sheet, image.Rect(x, y, x+cw, y+ch), cell.img, image.Point{}, draw.Src)
	}
	return sheet, nil
}
