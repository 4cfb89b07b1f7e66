package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"
)

// ExportName is the default file name for a table export
func ExportName(table string, now time.Time) string {
	return fmt.Sprintf("%s_export_%s.csv", table, now.Format("20060102_150405"))
}

// Export writes every row of table to a CSV file with a header line and
// returns the file name used. Only the tables in Tables can be exported.
func (s *Store) Export(ctx context.Context, table, filename string) (string, error) {
	if !slices.Contains(Tables, table) {
		s.logger.Error("refusing export", "table", table)
		return "", fmt.Errorf("export %q: %w", table, ErrUnknownTable)
	}
	if filename == "" {
		filename = ExportName(table, time.Now())
	}

	header, records, err := s.dump(ctx, table)
	if err != nil {
		s.logger.Error("failed to read table", "table", table, "err", err)
		return "", fmt.Errorf("export %s: %w", table, err)
	}

	if err := writeCSV(filename, header, records); err != nil {
		s.logger.Error("failed to write export", "table", table, "file", filename, "err", err)
		return "", fmt.Errorf("export %s: %w", table, err)
	}

	s.logger.Info("exported table", "table", table, "records", len(records), "file", filename)
	return filename, nil
}

func (s *Store) dump(ctx context.Context, table string) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range values {
			rec[i] = stringify(v)
		}
		records = append(records, rec)
	}
	return cols, records, rows.Err()
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.DateTime)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

func writeCSV(filename string, header []string, records [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

// LoadExport reads an export file back as its header and rows
func LoadExport(filename string) ([]string, [][]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("load export: %w", err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("load export %s: %w", filename, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("load export %s: empty file", filename)
	}
	return all[0], all[1:], nil
}
