package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wbrown/pic2ascii"
	"github.com/wbrown/pic2ascii/imageutil"
)

// printTable prints the table lightest glyph first, with each density
// both raw and normalized the way the renderer sees it.
func printTable(w io.Writer, table *pic2ascii.DensityTable) {
	fmt.Fprintf(w, "%-8s %-8s %10s %10s\n", "glyph", "code", "density", "threshold")
	for _, e := range table.Sorted() {
		fmt.Fprintf(w, "%-8s U+%04X   %10.6f %10.6f\n",
			strconv.QuoteRune(e.Glyph), e.Glyph, e.Density, table.Threshold(e.Density))
	}
}

func main() {
	fontName := flag.String("font", pic2ascii.ReferenceFont,
		"Font to calibrate: gomono, inconsolata, or path to a TTF/OTF file")
	fontSize := flag.Float64("size", pic2ascii.ReferenceFontSize,
		"Font size in points")
	glyphSet := flag.String("glyphs", "default",
		"Candidate glyph set: default (latin1) or cp437")
	outputFile := flag.String("output", "",
		"Path to save the density table file")
	sheetFile := flag.String("sheet", "",
		"Path to save a PNG of the calibration cells")
	columns := flag.Int("columns", 16,
		"Cells per row in the -sheet image")
	verbose := flag.Bool("verbose", false,
		"Log calibration details")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	glyphs, err := pic2ascii.GlyphSet(*glyphSet)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid glyph set")
	}

	logrus.Infof("Computing densities for font: %s at %vpt", *fontName, *fontSize)
	start := time.Now()
	table, err := pic2ascii.BuildDensityTable(glyphs, *fontName, *fontSize)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to compute densities")
	}
	logrus.WithFields(logrus.Fields{
		"candidates":  len(glyphs),
		"entries":     table.Len(),
		"min_density": table.MinDensity(),
	}).Infof("Computed densities in %v", time.Since(start))

	printTable(os.Stdout, table)

	if *outputFile != "" {
		if err := pic2ascii.SaveDensityTable(*outputFile, table); err != nil {
			logrus.WithError(err).Fatal("Failed to save density table")
		}
		if info, err := os.Stat(*outputFile); err == nil {
			logrus.Infof("Saved density table to %s (%.2f KB)",
				*outputFile, float64(info.Size())/1024)
		}
	}

	if *sheetFile != "" {
		sheet, err := pic2ascii.GlyphSheet(glyphs, *fontName, *fontSize, *columns)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to render glyph sheet")
		}
		if err := imageutil.SaveImage(sheet, *sheetFile); err != nil {
			logrus.WithError(err).Fatal("Failed to save glyph sheet")
		}
		logrus.Infof("Saved glyph sheet to %s", *sheetFile)
	}
}
