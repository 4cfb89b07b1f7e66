package clean

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-scripts/scrape/internal/types"
)

const (
	ColumnDataType = "Data Type"
	ColumnContent  = "Content"
)

var ErrMissingColumn = errors.New("missing column")

// Load reads a raw export with `Data Type` and `Content` columns. Other
// columns are ignored. A missing file surfaces as fs.ErrNotExist.
func Load(path string) ([]types.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses raw rows from any CSV stream
func Read(r io.Reader) ([]types.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	typeIdx := slices.Index(header, ColumnDataType)
	contentIdx := slices.Index(header, ColumnContent)
	if typeIdx < 0 || contentIdx < 0 {
		return nil, fmt.Errorf("%w: want %q and %q, got %v", ErrMissingColumn, ColumnDataType, ColumnContent, header)
	}

	var rows []types.RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, types.RawRow{
			DataType: field(rec, typeIdx),
			Content:  field(rec, contentIdx),
		})
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
