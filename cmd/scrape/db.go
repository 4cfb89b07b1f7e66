package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-scripts/scrape/internal/report"
	"github.com/go-scripts/scrape/internal/store"
	"github.com/go-scripts/scrape/internal/types"
)

type DBCmd struct {
	Stats  DBStatsCmd  `cmd:"" help:"Print row counts, top authors and recent sessions"`
	Export DBExportCmd `cmd:"" help:"Export one table to CSV"`
	Demo   DBDemoCmd   `cmd:"" help:"Store sample records in a session and export them"`
}

type DBStatsCmd struct{}

func (c *DBStatsCmd) Run(ctx context.Context, app *App) error {
	st, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	report.PrintStats(app.Stdout, stats)
	return nil
}

type DBExportCmd struct {
	Table string `arg:"" help:"Table to export (${enum})" enum:"quotes,products,general_content,scraping_sessions"`
	File  string `help:"Output CSV file, defaults to <table>_export_<timestamp>.csv"`
}

func (c *DBExportCmd) Run(ctx context.Context, app *App) error {
	st, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	file := c.File
	if file == "" {
		file = store.ExportName(c.Table, time.Now())
	}
	path, err := st.Export(ctx, c.Table, app.Files.Path(file))
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "Exported %s to %s\n", c.Table, path)
	return nil
}

type DBDemoCmd struct{}

var (
	demoQuotes = []types.Quote{
		{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs", Tags: types.Tags{"work", "passion", "greatness"}, Page: 1, SourceURL: "https://quotes.toscrape.com/"},
		{Text: "Life is what happens when you are busy making other plans.", Author: "John Lennon", Tags: types.Tags{"life", "plans"}, Page: 2, SourceURL: "https://quotes.toscrape.com/"},
	}
	demoProducts = []types.Product{
		{Name: "Wireless Mouse", Price: types.ParsePrice("$29.99"), Description: "Ergonomic wireless mouse with high precision", Category: "Electronics", SourceURL: "https://webscraper.io/test-sites/e-commerce/allinone", Available: true},
		{Name: "Mechanical Keyboard", Price: types.ParsePrice("$89.99"), Description: "RGB mechanical keyboard with blue switches", Category: "Electronics", SourceURL: "https://webscraper.io/test-sites/e-commerce/allinone", Available: true},
	}
	demoContent = []types.Content{
		{Type: string(types.CategoryParagraph), Text: "This is a test paragraph for database storage.", SourceURL: "https://example.com"},
	}
)

func (c *DBDemoCmd) Run(ctx context.Context, app *App) error {
	fmt.Fprintln(app.Stdout, "Testing database functionality...")

	st, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.StartSession(ctx)
	if err != nil {
		fmt.Fprintln(app.Stdout, "Failed to start scraping session")
		return err
	}

	var total int
	for _, save := range []func() (int, error){
		func() (int, error) { return st.SaveQuotes(ctx, demoQuotes) },
		func() (int, error) { return st.SaveProducts(ctx, demoProducts) },
		func() (int, error) { return st.SaveContent(ctx, demoContent) },
	} {
		n, err := save()
		if err != nil {
			return err
		}
		total += n
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	report.PrintStats(app.Stdout, stats)

	for _, table := range []string{store.TableQuotes, store.TableProducts} {
		path, err := st.Export(ctx, table, app.Files.Path(store.ExportName(table, time.Now())))
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout, "Exported %s to %s\n", table, path)
	}

	if err := st.EndSession(ctx, id, total, "test_sites"); err != nil {
		return err
	}

	fmt.Fprintf(app.Stdout, "\nDatabase test completed! Check '%s'.\n", app.Config.Output(app.Config.Database))
	if fi, err := os.Stat(app.Config.Output(app.Config.Database)); err == nil {
		fmt.Fprintf(app.Stdout, "Database file size: %.2f KB\n", float64(fi.Size())/1024)
	}
	return nil
}
