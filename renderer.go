package pic2ascii

import (
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wbrown/pic2ascii/imageutil"
	"golang.org/x/sync/errgroup"
)

// Decoder opens and decodes the image at path.
type Decoder func(path string) (*imageutil.RGBAImage, error)

// Renderer converts images to text. A Renderer is safe for concurrent
// use once configured; the density table it uses is read-only.
type Renderer struct {
	// Configuration options
	Aspect        float64
	Interpolation imageutil.Interpolation
	Brightness    BrightnessMethod
	Workers       int
	Adjustments   imageutil.Adjustments
	Decoder       Decoder

	// Calibration inputs for the lazily built table (private)
	glyphs   []rune
	fontName string
	fontSize float64
	table    *DensityTable

	log *logrus.Entry
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer with the given options.
// Default values: Aspect=0.5, Interpolation=InterpolationBox,
// Brightness=LumaMethod{}, Workers=GOMAXPROCS, the default glyph set
// calibrated with ReferenceFont at ReferenceFontSize.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		Aspect:        AspectCompensation,
		Interpolation: imageutil.InterpolationBox,
		Brightness:    LumaMethod{},
		Workers:       runtime.GOMAXPROCS(0),
		Decoder:       imageutil.LoadImage,

		glyphs:   DefaultGlyphs,
		fontName: ReferenceFont,
		fontSize: ReferenceFontSize,

		log: Logger.WithFields(nil),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithAspect sets the glyph cell width:height ratio.
func WithAspect(aspect float64) RendererOption {
	return func(r *Renderer) {
		r.Aspect = aspect
	}
}

// WithInterpolation sets the resampling filter used to downsample.
func WithInterpolation(interp imageutil.Interpolation) RendererOption {
	return func(r *Renderer) {
		r.Interpolation = interp
	}
}

// WithBrightness sets how pixel brightness is computed.
func WithBrightness(method BrightnessMethod) RendererOption {
	return func(r *Renderer) {
		r.Brightness = method
	}
}

// WithWorkers sets how many rows are scanned in parallel.
func WithWorkers(n int) RendererOption {
	return func(r *Renderer) {
		r.Workers = n
	}
}

// WithAdjustments sets tonal adjustments applied before the glyph scan.
func WithAdjustments(adj imageutil.Adjustments) RendererOption {
	return func(r *Renderer) {
		r.Adjustments = adj
	}
}

// WithDecoder replaces the image decoder used by RenderFile.
func WithDecoder(dec Decoder) RendererOption {
	return func(r *Renderer) {
		r.Decoder = dec
	}
}

// WithTable uses a prebuilt density table instead of calibrating.
func WithTable(table *DensityTable) RendererOption {
	return func(r *Renderer) {
		r.table = table
	}
}

// WithGlyphs sets the candidate glyphs used for calibration.
func WithGlyphs(glyphs []rune) RendererOption {
	return func(r *Renderer) {
		r.glyphs = glyphs
	}
}

// WithFont sets the calibration font and point size.
func WithFont(name string, size float64) RendererOption {
	return func(r *Renderer) {
		r.fontName = name
		r.fontSize = size
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(log *logrus.Entry) RendererOption {
	return func(r *Renderer) {
		r.log = log
	}
}

// Table returns the renderer's density table, calibrating and caching it
// on first use.
func (r *Renderer) Table() (*DensityTable, error) {
	if r.table != nil {
		return r.table, nil
	}
	return CachedDensityTable(r.glyphs, r.fontName, r.fontSize)
}

// Render converts img to text at most targetWidth columns wide, using
// table to pick glyphs.
func Render(
	img image.Image,
	targetWidth int,
	table *DensityTable,
) (RenderedText, error) {
	if targetWidth <= 0 {
		return nil, invalidWidth(strconv.Itoa(targetWidth))
	}
	if table.Len() == 0 {
		return nil, &ConfigurationError{Op: "render", Err: ErrNoTable}
	}
	return NewRenderer(WithTable(table)).Render(img, targetWidth)
}

// ParseWidth parses a column width as typed by a user.
func ParseWidth(s string) (int, error) {
	w, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || w <= 0 {
		return 0, invalidWidth(s)
	}
	return w, nil
}

// OutputSize returns the text grid size for a srcW x srcH image rendered
// at most targetWidth columns wide. The image is never upsampled, and
// the row count compensates for cells being taller than wide.
func OutputSize(srcW, srcH, targetWidth int, aspect float64) (int, int) {
	w := min(srcW, targetWidth)
	effectiveAspect := (float64(srcW) / float64(srcH)) / aspect
	h := int(math.Round(float64(w) / effectiveAspect))
	return w, max(h, 1)
}

// RenderFile decodes the image at path and renders it. The width is
// checked before the file is opened.
func (r *Renderer) RenderFile(path string, targetWidth int) (RenderedText, error) {
	if targetWidth <= 0 {
		return nil, invalidWidth(strconv.Itoa(targetWidth))
	}

	img, err := r.Decoder(path)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			return nil, err
		}
		return nil, &DecodeError{Path: path, Err: err}
	}
	return r.Render(img, targetWidth)
}

// Render converts img to text at most targetWidth columns wide.
func (r *Renderer) Render(img image.Image, targetWidth int) (RenderedText, error) {
	if targetWidth <= 0 {
		return nil, invalidWidth(strconv.Itoa(targetWidth))
	}
	if !(r.Aspect > 0) {
		return nil, &InvalidArgumentError{
			Name:  "aspect",
			Value: strconv.FormatFloat(r.Aspect, 'g', -1, 64),
		}
	}
	if img == nil || img.Bounds().Empty() {
		return nil, &DecodeError{Err: fmt.Errorf("image has no pixels")}
	}

	table, err := r.Table()
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, &ConfigurationError{Op: "render", Err: ErrNoTable}
	}
	return r.render(img, targetWidth, table), nil
}

func (r *Renderer) render(
	img image.Image,
	targetWidth int,
	table *DensityTable,
) RenderedText {
	start := time.Now()

	src := imageutil.RGBAImageFromImage(img)
	width, height := OutputSize(src.Width(), src.Height(), targetWidth, r.Aspect)

	grid := src
	if width != src.Width() || height != src.Height() {
		grid = imageutil.Resize(src, width, height, r.Interpolation)
	}
	grid = r.Adjustments.Apply(grid)

	ladder := newThresholdLadder(table)
	lines := make(RenderedText, height)

	var g errgroup.Group
	g.SetLimit(max(r.Workers, 1))
	for y := 0; y < height; y++ {
		y := y // per-iteration copy; go.mod targets go 1.21 loop semantics
		g.Go(func() error {
			lines[y] = r.renderRow(grid, y, ladder)
			return nil
		})
	}
	// Rows never fail; Wait only joins the workers.
	_ = g.Wait()

	r.log.WithFields(logrus.Fields{
		"source":  fmt.Sprintf("%dx%d", src.Width(), src.Height()),
		"output":  fmt.Sprintf("%dx%d", width, height),
		"glyphs":  table.Len(),
		"elapsed": time.Since(start),
	}).Debug("rendered image")
	return lines
}

// renderRow maps one row of the resampled grid to glyphs.
func (r *Renderer) renderRow(
	grid *imageutil.RGBAImage,
	y int,
	ladder *thresholdLadder,
) string {
	var sb strings.Builder
	sb.Grow(grid.Width())
	row := grid.Pix[y*grid.Stride:]
	for x := 0; x < grid.Width(); x++ {
		p := row[x*4 : x*4+3]
		b := r.Brightness.Brightness(p[0], p[1], p[2])
		sb.WriteRune(ladder.glyph(b))
	}
	return sb.String()
}

// thresholdLadder holds a table's glyphs ordered by descending density
// together with each density normalized so the darkest glyph sits at 0
// and pure white at 1.
type thresholdLadder struct {
	thresholds []float64
	glyphs     []rune
}

func newThresholdLadder(table *DensityTable) *thresholdLadder {
	sorted := table.Sorted()
	l := &thresholdLadder{
		thresholds: make([]float64, len(sorted)),
		glyphs:     make([]rune, len(sorted)),
	}
	for i, e := range sorted {
		l.thresholds[i] = table.Threshold(e.Density)
		l.glyphs[i] = e.Glyph
	}
	return l
}

// normalizeDensity rescales d so minDensity maps to 0 and 1 stays 1. A
// table whose darkest glyph is blank has a single key; it maps to 0.
func normalizeDensity(d, minDensity float64) float64 {
	if minDensity >= 1 {
		return 0
	}
	return (d - minDensity) / (1 - minDensity)
}

// glyph returns the glyph of the first (lightest) threshold that b is
// strictly above, or the darkest glyph when b clears none of them.
func (l *thresholdLadder) glyph(b float64) rune {
	i := sort.Search(len(l.thresholds), func(i int) bool {
		return b > l.thresholds[i]
	})
	if i == len(l.thresholds) {
		return l.glyphs[len(l.glyphs)-1]
	}
	return l.glyphs[i]
}
