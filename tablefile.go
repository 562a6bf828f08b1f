package pic2ascii

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// densityTableData is the serialized form of a DensityTable.
type densityTableData struct {
	Font    string
	Size    float64
	Entries []DensityEntry
}

// EncodeDensityTable writes t to w as zstd-compressed gob.
func EncodeDensityTable(w io.Writer, t *DensityTable) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	data := densityTableData{Font: t.Font, Size: t.Size, Entries: t.Entries()}
	if err := gob.NewEncoder(zw).Encode(&data); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode density table: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// DecodeDensityTable reads a table written by EncodeDensityTable. The
// entries are validated as if passed to NewDensityTable.
func DecodeDensityTable(r io.Reader) (*DensityTable, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var data densityTableData
	if err := gob.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode density table: %w", err)
	}

	t, err := NewDensityTable(data.Entries...)
	if err != nil {
		return nil, err
	}
	t.Font = data.Font
	t.Size = data.Size
	return t, nil
}

// SaveDensityTable writes t to the file at path.
func SaveDensityTable(path string, t *DensityTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := EncodeDensityTable(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadDensityTable reads a table file written by SaveDensityTable.
func LoadDensityTable(path string) (*DensityTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open density table: %w", err)
	}
	defer f.Close()

	return DecodeDensityTable(f)
}
