package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/report"
)

type StaticCmd struct {
	URL        string        `arg:"" optional:"" help:"Page to scrape (defaults to the configured static target)"`
	Links      int           `help:"Number of links to keep" default:"15"`
	Paragraphs int           `help:"Number of paragraphs to consider" default:"5"`
	Delay      time.Duration `help:"Pause before the request" default:"2s"`
	File       string        `help:"Output CSV file" default:"scraped_data.csv"`
}

func (c *StaticCmd) Run(ctx context.Context, app *App) error {
	url := c.URL
	if url == "" {
		url = app.Config.Targets.Static
	}

	fmt.Fprintf(app.Stdout, "Scraping %s...\n", url)
	if err := pause(ctx, c.Delay); err != nil {
		return err
	}

	doc, err := app.client().Document(ctx, url)
	if err != nil {
		app.Logger.Error("static scrape failed", "url", url, "err", err)
		fmt.Fprintln(app.Stdout, "No data was scraped")
		return nil
	}

	page := extract.Page(doc, extract.PageOptions{Links: c.Links, Paragraphs: c.Paragraphs})
	if page.HasTitle {
		fmt.Fprintf(app.Stdout, "Page Title: %s\n", page.Title)
	}
	fmt.Fprintf(app.Stdout, "Found %d links\n", len(page.Links))
	fmt.Fprintf(app.Stdout, "Found %d paragraphs\n", len(page.Paragraphs))
	for i, l := range page.Links[:min(5, len(page.Links))] {
		href := l.Href
		if short := extract.Truncate(href, 50); short != href {
			href = short + "..."
		}
		fmt.Fprintf(app.Stdout, "  %d. %s -> %s\n", i+1, l.Text, href)
	}

	path, err := app.Files.WriteRaw(c.File, page.RawRows())
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "Data saved to %s\n", path)
	return nil
}

type TitlesCmd struct {
	URL   string `arg:"" optional:"" help:"Page to read (defaults to the configured article page)"`
	Tag   string `help:"Element holding the titles" default:"h2"`
	Limit int    `help:"Number of titles to print" default:"10"`
}

func (c *TitlesCmd) Run(ctx context.Context, app *App) error {
	url := c.URL
	if url == "" {
		url = app.Config.Targets.Articles
	}

	doc, err := app.client().Document(ctx, url)
	if err != nil {
		app.Logger.Error("failed to read titles", "url", url, "err", err)
		fmt.Fprintf(app.Stdout, "Error occurred while making the request: %v\n", err)
		return nil
	}

	titles := extract.Headings(doc, c.Tag, c.Limit)
	if len(titles) == 0 {
		fmt.Fprintln(app.Stdout, "No titles found")
		return nil
	}
	report.PrintTitles(app.Stdout, titles)
	return nil
}
