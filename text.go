package pic2ascii

import (
	"io"
	"strings"
	"unicode/utf8"
)

// RenderedText is a rendered image, one string per output row.
type RenderedText []string

// Height returns the number of rows.
func (t RenderedText) Height() int {
	return len(t)
}

// Width returns the number of glyphs in the first row.
func (t RenderedText) Width() int {
	if len(t) == 0 {
		return 0
	}
	return utf8.RuneCountInString(t[0])
}

// Join concatenates the rows with sep between them.
func (t RenderedText) Join(sep string) string {
	return strings.Join(t, sep)
}

// String joins the rows with the platform line separator.
func (t RenderedText) String() string {
	return t.Join(lineSeparator)
}

// WriteTo writes every row followed by the platform line separator.
func (t RenderedText) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, line := range t {
		n, err := io.WriteString(w, line+lineSeparator)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
