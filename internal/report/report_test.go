package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/scrape/internal/clean"
	"github.com/go-scripts/scrape/internal/store"
	"github.com/go-scripts/scrape/internal/types"
)

func fixtureRows(t *testing.T) []clean.Row {
	t.Helper()
	rows, _ := clean.Clean([]types.RawRow{
		{DataType: "Page Title", Content: "Quotes to Scrape"},
		{DataType: "Link", Content: "Login -> /login"},
		{DataType: "Link", Content: "Next -> https://quotes.toscrape.com/page/2/"},
		{DataType: "Paragraph 1", Content: "The world as we have created it is a process of our thinking."},
		{DataType: "Paragraph 2", Content: ""},
	})
	require.NotEmpty(t, rows)
	return rows
}

func TestSummary(t *testing.T) {
	rows := fixtureRows(t)
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, rows, clean.Analyze(rows)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "DATA CLEANING SUMMARY REPORT\n"+strings.Repeat("=", 50)))
	assert.Contains(t, out, "Total Rows: 5\n")
	assert.Contains(t, out, "Total Columns: 7\n")
	assert.Contains(t, out, "Link: 2 rows\n")
	assert.Contains(t, out, "Rows containing URLs: 1\n")
	assert.Contains(t, out, "Rows containing arrows: 2\n")
	assert.Contains(t, out, "SAMPLE OF CLEANED DATA:")
	assert.Contains(t, out, "No Paragraph 2 content available")
}

func TestWriteSummary(t *testing.T) {
	rows := fixtureRows(t)
	path := filepath.Join(t.TempDir(), "data_cleaning_summary.txt")
	require.NoError(t, WriteSummary(path, rows, clean.Analyze(rows)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "CONTENT STATISTICS:")
}

func TestWriteCharts(t *testing.T) {
	rows := fixtureRows(t)
	path := filepath.Join(t.TempDir(), "charts.png")
	require.NoError(t, WriteCharts(path, rows, clean.Analyze(rows)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, ChartWidth, cfg.Width)
	assert.Equal(t, ChartHeight, cfg.Height)
}

func TestWriteChartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, WriteCharts(path, nil, clean.Analyze(nil)))
	assert.FileExists(t, path)
}

func TestPrintStats(t *testing.T) {
	end := time.Date(2025, 1, 2, 10, 5, 0, 0, time.UTC)
	var buf bytes.Buffer
	PrintStats(&buf, store.Stats{
		Quotes:     3,
		Products:   1,
		Sessions:   2,
		TopAuthors: []store.AuthorCount{{Author: "Albert Einstein", Quotes: 2}},
		RecentSessions: []types.Session{
			{ID: 2, StartTime: end.Add(-time.Minute), Status: types.SessionRunning},
			{ID: 1, StartTime: end.Add(-time.Hour), EndTime: &end, TotalRecords: 4, Status: types.SessionCompleted, Websites: "quotes.toscrape.com"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Total quotes")
	assert.Contains(t, out, "Albert Einstein")
	assert.Contains(t, out, "2025-01-02 10:05:00")
	assert.Contains(t, out, "quotes.toscrape.com")
}

func TestPrintRun(t *testing.T) {
	static := Counts{Quotes: 4, Content: 1}
	dynamic := Counts{Quotes: 10, Content: 2}
	var buf bytes.Buffer
	PrintRun(&buf, Run{
		SessionID: 7,
		Timestamp: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
		Static:    static,
		Dynamic:   dynamic,
		Saved:     static.Add(dynamic),
		Sites:     []string{"passiton.com", "quotes.toscrape.com"},
		Errors:    []string{"ajax: timeout"},
	})

	out := buf.String()
	assert.Contains(t, out, "COMBINED PIPELINE REPORT")
	assert.Contains(t, out, "Session: 7")
	assert.Contains(t, out, "Websites: passiton.com, quotes.toscrape.com")
	assert.Contains(t, out, "Error: ajax: timeout")
	assert.Equal(t, 17, static.Add(dynamic).Total())
}

func TestPrintAnalysisAndTitles(t *testing.T) {
	rows := fixtureRows(t)
	var buf bytes.Buffer
	PrintAnalysis(&buf, clean.Analyze(rows))
	PrintTitles(&buf, []string{"First article", "Second article"})

	out := buf.String()
	assert.Contains(t, out, "Paragraph 1")
	assert.Contains(t, out, "Second article")
}
