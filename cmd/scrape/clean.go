package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-scripts/scrape/internal/clean"
	"github.com/go-scripts/scrape/internal/report"
)

type CleanCmd struct {
	Input   string `arg:"" optional:"" help:"Raw scrape export" default:"scraped_data.csv"`
	File    string `help:"Cleaned CSV file" default:"cleaned_scraped_data.csv"`
	Summary string `help:"Summary report file" default:"data_cleaning_summary.txt"`
	Charts  string `help:"Chart image file, empty to skip" default:"data_analysis_visualization.png"`
}

func (c *CleanCmd) Run(_ context.Context, app *App) error {
	fmt.Fprintln(app.Stdout, "Starting Data Cleaning Pipeline")
	fmt.Fprintln(app.Stdout, strings.Repeat("=", 50))

	input := app.Files.Path(c.Input)
	raw, err := clean.Load(input)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s file not found, run the static scraper first: %w", c.Input, err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "Dataset shape: (%d, 2)\n", len(raw))

	rows, stats := clean.Clean(raw)
	app.Logger.Info("cleaned data", "input", stats.Input, "output", stats.Output, "duplicates", stats.Duplicates)
	fmt.Fprintln(app.Stdout, stats)

	analysis := clean.Analyze(rows)
	report.PrintAnalysis(app.Stdout, analysis)

	if c.Charts != "" {
		path := app.Files.Path(c.Charts)
		if err := report.WriteCharts(path, rows, analysis); err != nil {
			app.Logger.Error("failed to draw charts", "err", err)
			return err
		}
		fmt.Fprintf(app.Stdout, "Visualizations saved as '%s'\n", path)
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}
	path, err := app.Files.WriteTable(c.File, clean.Header, records)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "Exported cleaned data to %s\n", path)

	summary := app.Files.Path(c.Summary)
	if err := report.WriteSummary(summary, rows, analysis); err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "Summary report saved to %s\n", summary)

	fmt.Fprintln(app.Stdout, "\nFINAL CLEANED DATA SAMPLE:")
	report.PrintSample(app.Stdout, rows, 15)
	fmt.Fprintln(app.Stdout, "\nData cleaning pipeline completed successfully!")
	return nil
}
