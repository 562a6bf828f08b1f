package pic2ascii

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/wbrown/pic2ascii/imageutil"
)

var (
	white = imageutil.RGB{R: 255, G: 255, B: 255}
	black = imageutil.RGB{R: 0, G: 0, B: 0}
)

// testTable is already normalized: its darkest glyph sits at 0.
func testTable(t *testing.T) *DensityTable {
	t.Helper()
	table, err := NewDensityTable(
		DensityEntry{Density: 1, Glyph: ' '},
		DensityEntry{Density: 0.75, Glyph: '.'},
		DensityEntry{Density: 0.5, Glyph: '+'},
		DensityEntry{Density: 0, Glyph: '#'},
	)
	if err != nil {
		t.Fatalf("NewDensityTable failed: %v", err)
	}
	return table
}

// scanGlyph is the unoptimized lookup: walk keys from lightest to
// darkest and take the first normalized key the brightness exceeds.
func scanGlyph(table *DensityTable, b float64) rune {
	sorted := table.Sorted()
	for _, e := range sorted {
		if b > table.Threshold(e.Density) {
			return e.Glyph
		}
	}
	return sorted[len(sorted)-1].Glyph
}

// countingImage records every pixel or bounds access.
type countingImage struct {
	image.Image
	calls atomic.Int64
}

func (c *countingImage) Bounds() image.Rectangle {
	c.calls.Add(1)
	return c.Image.Bounds()
}

func (c *countingImage) At(x, y int) color.Color {
	c.calls.Add(1)
	return c.Image.At(x, y)
}

func TestThresholdLadder(t *testing.T) {
	t.Parallel()
	ladder := newThresholdLadder(testTable(t))

	tests := []struct {
		brightness float64
		want       rune
	}{
		{1, '.'},    // white clears everything but the blank cell
		{0.76, '.'}, // just above '.'
		{0.75, '+'}, // ties go to the darker glyph
		{0.6, '+'},
		{0.5, '#'},
		{0.01, '#'},
		{0, '#'}, // clears nothing, falls back to the darkest
	}
	for _, tt := range tests {
		if got := ladder.glyph(tt.brightness); got != tt.want {
			t.Errorf("glyph(%v) = %q, want %q", tt.brightness, got, tt.want)
		}
	}
}

func TestThresholdLadderMatchesLinearScan(t *testing.T) {
	t.Parallel()

	table, err := DefaultDensityTable()
	if err != nil {
		t.Fatalf("DefaultDensityTable failed: %v", err)
	}
	ladder := newThresholdLadder(table)

	for i := 0; i <= 1000; i++ {
		b := float64(i) / 1000
		if got, want := ladder.glyph(b), scanGlyph(table, b); got != want {
			t.Errorf("brightness %v: ladder %q, linear scan %q", b, got, want)
		}
	}
	// Also probe exactly at every threshold.
	for _, e := range table.Entries() {
		b := table.Threshold(e.Density)
		if got, want := ladder.glyph(b), scanGlyph(table, b); got != want {
			t.Errorf("at threshold %v: ladder %q, linear scan %q", b, got, want)
		}
	}
}

func TestGlyphMappingIsMonotonic(t *testing.T) {
	t.Parallel()

	table, err := DefaultDensityTable()
	if err != nil {
		t.Fatalf("DefaultDensityTable failed: %v", err)
	}
	ladder := newThresholdLadder(table)
	density := make(map[rune]float64)
	for _, e := range table.Entries() {
		density[e.Glyph] = e.Density
	}

	prev := math.Inf(1)
	for i := 1000; i >= 0; i-- {
		d := density[ladder.glyph(float64(i)/1000)]
		if d > prev {
			t.Fatalf("brightness %v picked a lighter glyph (%v) than a brighter pixel (%v)",
				float64(i)/1000, d, prev)
		}
		prev = d
	}
}

func TestFallbackGlyphs(t *testing.T) {
	t.Parallel()

	table, err := DefaultDensityTable()
	if err != nil {
		t.Fatalf("DefaultDensityTable failed: %v", err)
	}
	ladder := newThresholdLadder(table)

	if got := ladder.glyph(0); got != table.Darkest() {
		t.Errorf("Black should map to the darkest glyph %q, got %q", table.Darkest(), got)
	}

	// White maps to the lightest key whose normalized density is below 1.
	var want rune
	for _, e := range table.Sorted() {
		if table.Threshold(e.Density) < 1 {
			want = e.Glyph
			break
		}
	}
	if got := ladder.glyph(1); got != want {
		t.Errorf("White should map to %q, got %q", want, got)
	}
}

func TestSingleEntryTable(t *testing.T) {
	t.Parallel()

	table, err := NewDensityTable(DensityEntry{Density: 1, Glyph: ' '})
	if err != nil {
		t.Fatal(err)
	}
	img := imageutil.CreateGradientImage(8, 4)
	text, err := Render(img, 8, table)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, line := range text {
		if strings.Trim(line, " ") != "" {
			t.Errorf("Expected only blanks, got %q", line)
		}
	}
}

func TestOutputSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		srcW, srcH, target int
		wantW, wantH       int
	}{
		{100, 50, 40, 40, 10},  // 2:1 image, aspect 4 after compensation
		{100, 100, 80, 80, 40}, // square
		{2, 2, 2, 2, 1},        // square 2x2 collapses to a single row
		{2, 4, 2, 2, 2},        // 1:2 image keeps two rows
		{10, 10, 50, 10, 5},    // never upsampled
		{1000, 1, 80, 80, 1},   // very wide floors at one row
		{3, 1000, 80, 3, 500},  // very tall
	}
	for _, tt := range tests {
		w, h := OutputSize(tt.srcW, tt.srcH, tt.target, AspectCompensation)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("OutputSize(%d, %d, %d) = %dx%d, want %dx%d",
				tt.srcW, tt.srcH, tt.target, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestRenderDimensions(t *testing.T) {
	t.Parallel()
	table := testTable(t)

	img := imageutil.CreateColorBarsImage(160, 90)
	for _, width := range []int{1, 7, 40, 160} {
		text, err := Render(img, width, table)
		if err != nil {
			t.Fatalf("Render(width=%d) failed: %v", width, err)
		}
		wantH := max(int(math.Round(float64(width)/((160.0/90.0)/AspectCompensation))), 1)
		if text.Height() != wantH {
			t.Errorf("width %d: expected %d rows, got %d", width, wantH, text.Height())
		}
		for i, line := range text {
			if n := len([]rune(line)); n != width {
				t.Errorf("width %d: row %d has %d columns", width, i, n)
			}
		}
	}
}

func TestRenderWidthClamp(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateGradientImage(10, 10)
	text, err := Render(img, 50, testTable(t))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if text.Width() != 10 {
		t.Errorf("Expected width clamped to 10, got %d", text.Width())
	}
	if text.Height() != 5 {
		t.Errorf("Expected 5 rows, got %d", text.Height())
	}
}

func TestRenderWhiteOverBlack(t *testing.T) {
	t.Parallel()

	table, err := DefaultDensityTable()
	if err != nil {
		t.Fatalf("DefaultDensityTable failed: %v", err)
	}
	ladder := newThresholdLadder(table)
	light, dark := ladder.glyph(1), table.Darkest()

	// Two columns, no horizontal downsampling; four rows become two.
	img := imageutil.CreateSplitImage(2, 4, white, black)
	text, err := Render(img, 2, table)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := RenderedText{string([]rune{light, light}), string([]rune{dark, dark})}
	if !reflect.DeepEqual(text, want) {
		t.Errorf("Render = %q, want %q", text, want)
	}
}

func TestRenderSquareTwoByTwo(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateSplitImage(2, 2, white, black)
	text, err := Render(img, 2, testTable(t))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if text.Height() != 1 || text.Width() != 2 {
		t.Errorf("Expected a single row of 2, got %dx%d", text.Width(), text.Height())
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	img := imageutil.CreateColorBarsImage(300, 200)

	serial, err := NewRenderer(WithTable(table), WithWorkers(1)).Render(img, 73)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		parallel, err := NewRenderer(WithTable(table), WithWorkers(8)).Render(img, 73)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !reflect.DeepEqual(serial, parallel) {
			t.Fatal("Parallel render should match serial render")
		}
	}
}

func TestRenderGradientDarkensLeftToRight(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	density := make(map[rune]float64)
	for _, e := range table.Entries() {
		density[e.Glyph] = e.Density
	}

	// Black on the left, white on the right.
	img := imageutil.CreateGradientImage(256, 64)
	text, err := Render(img, 64, table)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	row := []rune(text[0])
	if row[0] != '#' {
		t.Errorf("Expected the black edge to render '#', got %q", row[0])
	}
	for x := 1; x < len(row); x++ {
		if density[row[x]] < density[row[x-1]] {
			t.Fatalf("Column %d is darker than column %d: %q", x, x-1, text[0])
		}
	}
}

func TestRenderFlattensTransparency(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 8)) // fully transparent
	text, err := Render(img, 4, testTable(t))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, line := range text {
		if line != "...." {
			t.Errorf("Transparent pixels should render as white paper, got %q", line)
		}
	}
}

func TestRenderRejectsInvalidWidthFirst(t *testing.T) {
	t.Parallel()

	for _, width := range []int{0, -1, -80} {
		img := &countingImage{Image: imageutil.CreateGradientImage(8, 8)}

		_, err := Render(img, width, nil)
		if !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("width %d: expected ErrInvalidWidth, got %v", width, err)
		}
		var argErr *InvalidArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("width %d: expected InvalidArgumentError, got %T", width, err)
		}

		// A font that cannot load proves no calibration was attempted.
		r := NewRenderer(WithFont("no-such-font", 12))
		if _, err := r.Render(img, width); !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("width %d: expected ErrInvalidWidth before calibration, got %v", width, err)
		}

		if n := img.calls.Load(); n != 0 {
			t.Errorf("width %d: image was touched %d times", width, n)
		}
	}
}

func TestRenderFileRejectsInvalidWidthBeforeDecode(t *testing.T) {
	t.Parallel()

	decoded := false
	r := NewRenderer(
		WithTable(testTable(t)),
		WithDecoder(func(string) (*imageutil.RGBAImage, error) {
			decoded = true
			return imageutil.CreateGradientImage(4, 4), nil
		}),
	)
	if _, err := r.RenderFile("whatever.png", 0); !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("Expected ErrInvalidWidth, got %v", err)
	}
	if decoded {
		t.Error("Decoder should not run for an invalid width")
	}
}

func TestRenderFileDecodeError(t *testing.T) {
	t.Parallel()

	r := NewRenderer(WithTable(testTable(t)))
	path := filepath.Join(t.TempDir(), "missing.png")
	_, err := r.RenderFile(path, 80)

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
	if decErr.Path != path {
		t.Errorf("Expected path %q in error, got %q", path, decErr.Path)
	}

	// Errors that already are DecodeErrors pass through unchanged.
	orig := &DecodeError{Path: "x", Err: errors.New("boom")}
	r = NewRenderer(
		WithTable(testTable(t)),
		WithDecoder(func(string) (*imageutil.RGBAImage, error) { return nil, orig }),
	)
	if _, err := r.RenderFile("y", 80); err != orig {
		t.Errorf("Expected the decoder's DecodeError unchanged, got %v", err)
	}
}

func TestRenderFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "split.png")
	if err := imageutil.SaveImage(imageutil.CreateSplitImage(2, 4, white, black).RGBA, path); err != nil {
		t.Fatal(err)
	}

	text, err := NewRenderer(WithTable(testTable(t))).RenderFile(path, 80)
	if err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}
	want := RenderedText{"..", "##"}
	if !reflect.DeepEqual(text, want) {
		t.Errorf("RenderFile = %q, want %q", text, want)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()
	table := testTable(t)

	var decErr *DecodeError
	if _, err := Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, table); !errors.As(err, &decErr) {
		t.Errorf("Empty image: expected DecodeError, got %v", err)
	}
	if _, err := Render(nil, 10, table); !errors.As(err, &decErr) {
		t.Errorf("Nil image: expected DecodeError, got %v", err)
	}
	if _, err := Render(imageutil.CreateGradientImage(2, 2), 10, nil); !errors.Is(err, ErrNoTable) {
		t.Errorf("Nil table: expected ErrNoTable, got %v", err)
	}

	r := NewRenderer(WithTable(table), WithAspect(0))
	var argErr *InvalidArgumentError
	_, err := r.Render(imageutil.CreateGradientImage(2, 2), 10)
	if !errors.As(err, &argErr) || argErr.Name != "aspect" {
		t.Errorf("Zero aspect: expected aspect InvalidArgumentError, got %v", err)
	}
	if errors.Is(err, ErrInvalidWidth) {
		t.Error("Aspect errors should not match ErrInvalidWidth")
	}
}

func TestRenderRejectsEmptyTables(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateGradientImage(4, 4)
	for name, table := range map[string]*DensityTable{
		"nil":        nil,
		"zero value": {},
		"no entries": {entries: newOrderedMap[float64, rune](0)},
	} {
		_, err := Render(img, 4, table)
		if !errors.Is(err, ErrNoTable) {
			t.Errorf("%s table: expected ErrNoTable, got %v", name, err)
		}
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s table: expected ConfigurationError, got %T", name, err)
		}
	}

	// The same guard applies to a renderer configured with WithTable.
	_, err := NewRenderer(WithTable(&DensityTable{})).Render(img, 4)
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("WithTable(zero value): expected ErrNoTable, got %v", err)
	}
}

func TestRenderVerticalGradientLightensDownward(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	density := make(map[rune]float64)
	for _, e := range table.Entries() {
		density[e.Glyph] = e.Density
	}

	// Black at the top, white at the bottom.
	img := imageutil.CreateVerticalGradientImage(16, 256)
	text, err := Render(img, 16, table)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if text.Height() != 128 {
		t.Fatalf("Expected 128 rows, got %d", text.Height())
	}
	if text[0] != "################" {
		t.Errorf("Expected the black edge to render '#', got %q", text[0])
	}
	for y := 1; y < text.Height(); y++ {
		if strings.Count(text[y], text[y][:1]) != 16 {
			t.Errorf("Row %d should be uniform, got %q", y, text[y])
		}
		above, here := []rune(text[y-1])[0], []rune(text[y])[0]
		if density[here] < density[above] {
			t.Fatalf("Row %d (%q) is darker than row %d (%q)", y, here, y-1, above)
		}
	}
}

// Not parallel: swaps the package logger.
func TestRendererDefaultsToPackageLogger(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	Logger = logger

	r := NewRenderer(WithTable(testTable(t)))
	if _, err := r.Render(imageutil.CreateGradientImage(8, 8), 8); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "rendered image") {
		t.Errorf("Expected render diagnostics on the package logger, got %q", buf.String())
	}
}

func TestRenderWithAdjustments(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateSolidImage(4, 8, white)
	r := NewRenderer(
		WithTable(testTable(t)),
		WithAdjustments(imageutil.Adjustments{Invert: true}),
	)
	text, err := r.Render(img, 4)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, line := range text {
		if line != "####" {
			t.Errorf("Inverted white should render darkest, got %q", line)
		}
	}
}

func TestRendererOptions(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	r := NewRenderer(
		WithAspect(0.6),
		WithInterpolation(imageutil.InterpolationNearest),
		WithBrightness(LabMethod{}),
		WithWorkers(3),
		WithTable(table),
	)

	if r.Aspect != 0.6 {
		t.Errorf("Expected Aspect=0.6, got %f", r.Aspect)
	}
	if r.Interpolation != imageutil.InterpolationNearest {
		t.Errorf("Expected nearest interpolation, got %v", r.Interpolation)
	}
	if _, ok := r.Brightness.(LabMethod); !ok {
		t.Errorf("Expected LabMethod, got %T", r.Brightness)
	}
	if r.Workers != 3 {
		t.Errorf("Expected Workers=3, got %d", r.Workers)
	}
	if got, _ := r.Table(); got != table {
		t.Error("Expected the configured table")
	}

	d := NewRenderer()
	if d.Aspect != AspectCompensation {
		t.Errorf("Expected default aspect %v, got %v", AspectCompensation, d.Aspect)
	}
	if d.Interpolation != imageutil.InterpolationBox {
		t.Errorf("Expected default box interpolation, got %v", d.Interpolation)
	}
	if _, ok := d.Brightness.(LumaMethod); !ok {
		t.Errorf("Expected default LumaMethod, got %T", d.Brightness)
	}
}

func TestParseWidth(t *testing.T) {
	t.Parallel()

	valid := map[string]int{"80": 80, " 12 ": 12, "1": 1}
	for in, want := range valid {
		got, err := ParseWidth(in)
		if err != nil || got != want {
			t.Errorf("ParseWidth(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, in := range []string{"", "0", "-5", "abc", "12.5", "8O"} {
		if _, err := ParseWidth(in); !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("ParseWidth(%q): expected ErrInvalidWidth, got %v", in, err)
		}
	}
}
