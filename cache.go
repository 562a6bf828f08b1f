package pic2ascii

import (
	"fmt"
	"sync"
)

// tableKey identifies a calibration: the same glyphs, font and size
// always produce the same table. Glyphs are keyed by their code points,
// since converting to a string would fold every invalid rune into
// U+FFFD.
type tableKey struct {
	glyphs string
	font   string
	size   float64
}

// tableCache memoizes density tables for the life of the process.
// Entries are never invalidated.
type tableCache struct {
	mu     sync.Mutex
	tables map[tableKey]*DensityTable
}

var densityTables = &tableCache{tables: make(map[tableKey]*DensityTable)}

func (c *tableCache) get(key tableKey) (*DensityTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[key]
	return t, ok
}

// store keeps the first table stored under key and returns it.
func (c *tableCache) store(key tableKey, t *DensityTable) *DensityTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.tables[key]; ok {
		return existing
	}
	c.tables[key] = t
	return t
}

// CachedDensityTable returns the table for (glyphs, fontFace, fontSize),
// building it on first use. Calibration runs outside the cache lock, so
// concurrent first callers may each build; all of them get the table
// that was stored first.
func CachedDensityTable(
	glyphs []rune,
	fontFace string,
	fontSize float64,
) (*DensityTable, error) {
	key := tableKey{glyphs: fmt.Sprint(glyphs), font: fontFace, size: fontSize}
	if t, ok := densityTables.get(key); ok {
		return t, nil
	}

	t, err := BuildDensityTable(glyphs, fontFace, fontSize)
	if err != nil {
		return nil, err
	}
	return densityTables.store(key, t), nil
}

// DefaultDensityTable returns the cached table for DefaultGlyphs rendered
// with ReferenceFont at ReferenceFontSize.
func DefaultDensityTable() (*DensityTable, error) {
	return CachedDensityTable(DefaultGlyphs, ReferenceFont, ReferenceFontSize)
}
