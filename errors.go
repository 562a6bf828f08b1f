package pic2ascii

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFixedPitch is returned when the calibration font renders
	// narrow and wide glyphs at different widths.
	ErrNotFixedPitch = errors.New("font is not fixed-pitch")
	// ErrUnknownFont is returned for font names that are neither
	// embedded nor a readable font file.
	ErrUnknownFont = errors.New("unknown font")
	// ErrEmptyGlyphSet is returned when calibration has nothing to measure.
	ErrEmptyGlyphSet = errors.New("empty glyph set")
	// ErrUnknownGlyphSet is returned by GlyphSet for unrecognised names.
	ErrUnknownGlyphSet = errors.New("unknown glyph set")
	// ErrNoTable is returned when rendering without a density table.
	ErrNoTable = errors.New("no density table")
	// ErrInvalidWidth matches every InvalidArgumentError raised for the
	// target column width.
	ErrInvalidWidth = errors.New("target width must be a positive integer")
)

// ConfigurationError reports a problem with the calibration inputs: the
// font, its size or the glyph set. It is not retryable.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InvalidArgumentError reports a caller-supplied value that was rejected
// before any image work started.
type InvalidArgumentError struct {
	Name  string
	Value string
}

func (e *InvalidArgumentError) Error() string {
	if e.Name == "width" {
		return fmt.Sprintf("invalid width %q: %v", e.Value, ErrInvalidWidth)
	}
	return fmt.Sprintf("invalid %s %q: must be positive", e.Name, e.Value)
}

// Is lets errors.Is(err, ErrInvalidWidth) match width errors.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidWidth && e.Name == "width"
}

// DecodeError reports an image that could not be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func invalidWidth(v string) error {
	return &InvalidArgumentError{Name: "width", Value: v}
}
