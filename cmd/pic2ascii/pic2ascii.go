package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wbrown/pic2ascii"
	"github.com/wbrown/pic2ascii/imageutil"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (or pass it as the first argument)")
	outputFile := flag.String("output", "",
		"Path to save the output (if not specified, prints to stdout)")
	targetWidth := flag.String("width", fmt.Sprint(pic2ascii.DefaultWidth),
		"Maximum number of output columns")
	fontName := flag.String("font", pic2ascii.ReferenceFont,
		"Calibration font: gomono, inconsolata, or path to a TTF/OTF file")
	fontSize := flag.Float64("size", pic2ascii.ReferenceFontSize,
		"Calibration font size in points")
	glyphSet := flag.String("glyphs", "default",
		"Candidate glyph set: default (latin1) or cp437")
	interp := flag.String("interp", "box",
		"Resampling filter: box, catmullrom, bilinear, or nearest")
	brightness := flag.String("brightness", "luma",
		"Brightness method: luma, lightness, or lab")
	aspect := flag.Float64("aspect", pic2ascii.AspectCompensation,
		"Glyph cell width:height ratio")
	tableFile := flag.String("table", "",
		"Pre-computed density table (from compute_densities)")
	gamma := flag.Float64("gamma", 1.0,
		"Gamma correction applied before glyph selection")
	contrast := flag.Float64("contrast", 0,
		"Contrast adjustment in percent (-100 to 100)")
	invert := flag.Bool("invert", false,
		"Invert brightness (light text on dark background)")
	decoder := flag.String("decoder", "go",
		"Image decoder: go or opencv (requires -tags gocv)")
	verbose := flag.Bool("verbose", false,
		"Log calibration and render details")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *inputFile == "" && flag.NArg() > 0 {
		*inputFile = flag.Arg(0)
	}
	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// The width is checked before anything is decoded or calibrated.
	width, err := pic2ascii.ParseWidth(*targetWidth)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid width")
	}

	beginInit := time.Now()
	opts, err := rendererOptions(options{
		fontName:   *fontName,
		fontSize:   *fontSize,
		glyphSet:   *glyphSet,
		interp:     *interp,
		brightness: *brightness,
		aspect:     *aspect,
		tableFile:  *tableFile,
		gamma:      *gamma,
		contrast:   *contrast,
		invert:     *invert,
		decoder:    *decoder,
		explicit:   explicit,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	renderer := pic2ascii.NewRenderer(opts...)

	table, err := renderer.Table()
	if err != nil {
		logrus.WithError(err).Fatal("Error building density table")
	}
	endInit := time.Now()
	logrus.WithFields(logrus.Fields{
		"font":        table.Font,
		"size":        table.Size,
		"entries":     table.Len(),
		"min_density": table.MinDensity(),
		"brightness":  renderer.Brightness.Name(),
		"interp":      renderer.Interpolation,
	}).Infof("Initialization time: %v", endInit.Sub(beginInit))

	text, err := renderer.RenderFile(*inputFile, width)
	if err != nil {
		logrus.WithError(err).Fatal("Error processing image")
	}
	endComputation := time.Now()

	if err := writeText(text, *outputFile); err != nil {
		logrus.WithError(err).Fatal("Error writing output")
	}
	if *outputFile != "" {
		logrus.Infof("Output written to %s", *outputFile)
	}

	logrus.WithFields(logrus.Fields{
		"columns": text.Width(),
		"rows":    text.Height(),
	}).Infof("Computation time: %v", endComputation.Sub(endInit))
}

type options struct {
	fontName   string
	fontSize   float64
	glyphSet   string
	interp     string
	brightness string
	aspect     float64
	tableFile  string
	gamma      float64
	contrast   float64
	invert     bool
	decoder    string

	// explicit holds the names of flags set on the command line.
	explicit map[string]bool
}

// calibrationFlags only matter when the table is calibrated here.
var calibrationFlags = []string{"font", "size", "glyphs"}

// rendererOptions turns flag values into renderer options.
func rendererOptions(o options) ([]pic2ascii.RendererOption, error) {
	interp, err := imageutil.ParseInterpolation(o.interp)
	if err != nil {
		return nil, err
	}
	method, err := pic2ascii.ParseBrightnessMethod(o.brightness)
	if err != nil {
		return nil, err
	}

	opts := []pic2ascii.RendererOption{
		pic2ascii.WithAspect(o.aspect),
		pic2ascii.WithInterpolation(interp),
		pic2ascii.WithBrightness(method),
		pic2ascii.WithAdjustments(imageutil.Adjustments{
			Gamma:    float32(o.gamma),
			Contrast: float32(o.contrast),
			Invert:   o.invert,
		}),
	}

	if o.tableFile != "" {
		table, err := pic2ascii.LoadDensityTable(o.tableFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pic2ascii.WithTable(table))

		var ignored []string
		for _, name := range calibrationFlags {
			if o.explicit[name] {
				ignored = append(ignored, "-"+name)
			}
		}
		if len(ignored) > 0 {
			logrus.WithFields(logrus.Fields{
				"table":   o.tableFile,
				"ignored": strings.Join(ignored, " "),
			}).Warnf("Calibration flags have no effect with -table; "+
				"the table was calibrated with %s at %vpt", table.Font, table.Size)
		}
	} else {
		glyphs, err := pic2ascii.GlyphSet(o.glyphSet)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			pic2ascii.WithGlyphs(glyphs),
			pic2ascii.WithFont(o.fontName, o.fontSize))
	}

	switch strings.ToLower(o.decoder) {
	case "", "go":
	case "opencv":
		if !imageutil.OpenCVAvailable {
			return nil, fmt.Errorf("opencv decoder unavailable, rebuild with -tags gocv")
		}
		opts = append(opts, pic2ascii.WithDecoder(imageutil.LoadImageOpenCV))
	default:
		return nil, fmt.Errorf("invalid decoder %q, options are go or opencv", o.decoder)
	}
	return opts, nil
}

// writeText writes text to path, or to stdout when path is empty.
func writeText(text pic2ascii.RenderedText, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if _, err := text.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	_, err := text.WriteTo(w)
	return err
}
