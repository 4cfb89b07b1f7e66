package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/go-scripts/scrape/internal/clean"
)

const sampleRows = 10

// WriteSummary writes the cleaning summary report to path
func WriteSummary(path string, rows []clean.Row, a clean.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	defer f.Close()

	if err := Summary(f, rows, a); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return f.Close()
}

// Summary renders the cleaning summary report
func Summary(w io.Writer, rows []clean.Row, a clean.Analysis) error {
	var b strings.Builder
	rule := func(n int) { b.WriteString(strings.Repeat("=", n) + "\n") }
	dash := func() { b.WriteString(strings.Repeat("-", 30) + "\n") }

	b.WriteString("DATA CLEANING SUMMARY REPORT\n")
	rule(50)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total Rows: %d\n", len(rows))
	fmt.Fprintf(&b, "Total Columns: %d\n\n", len(clean.Header))

	b.WriteString("DATA TYPES DISTRIBUTION:\n")
	dash()
	for _, c := range a.Categories {
		fmt.Fprintf(&b, "%s: %d rows\n", c.DataType, c.Count)
	}

	b.WriteString("\nCONTENT STATISTICS:\n")
	dash()
	fmt.Fprintf(&b, "Average Content Length: %.2f characters\n", a.MeanLength)
	fmt.Fprintf(&b, "Average Word Count: %.2f words\n", a.MeanWords)
	fmt.Fprintf(&b, "Rows containing URLs: %d\n", a.URLRows)
	fmt.Fprintf(&b, "Rows containing arrows: %d\n", a.ArrowRows)

	b.WriteString("\nSAMPLE OF CLEANED DATA:\n")
	dash()
	b.WriteString(sampleTable(rows, sampleRows))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func sampleTable(rows []clean.Row, n int) string {
	t := table.NewWriter()
	header := table.Row{}
	for _, h := range clean.Header {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, r := range rows[:min(n, len(rows))] {
		rec := r.Record()
		row := make(table.Row, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
	return t.Render()
}
