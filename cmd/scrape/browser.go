package main

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/pipeline"
	"github.com/go-scripts/scrape/internal/progress"
	"github.com/go-scripts/scrape/internal/queue"
	"github.com/go-scripts/scrape/internal/types"
	"github.com/go-scripts/scrape/ui"
)

const productLimit = 10

type DynamicCmd struct {
	Headless  bool          `help:"Run Chrome without a window" default:"true" negatable:""`
	Snapshots bool          `help:"Write the HTML of every page read to the output directory"`
	Delay     time.Duration `help:"Pause between sites" default:"2s"`
	File      string        `help:"Output CSV file" default:"dynamic_content_scraped.csv"`
	Save      bool          `help:"Also store the items in the database"`
}

func (c *DynamicCmd) Run(ctx context.Context, app *App) error {
	b, err := app.browser(c.Headless, c.Snapshots)
	if err != nil {
		return err
	}
	defer b.Close()

	panel := app.newPanel()
	panel.UpdateStats(ui.RunStats{Title: "Dynamic Scrape", StartTime: time.Now()})

	q := queue.New(app.Stderr, app.Logger)
	q.Push(
		queue.Target{Name: "Infinite Scroll Practice", URL: app.Config.Targets.Scroll, Kind: pipeline.KindInfiniteScroll},
		queue.Target{Name: "AJAX Content Practice", URL: app.Config.Targets.AJAX, Kind: pipeline.KindAJAX},
	)

	var (
		items []types.Item
		sites []string
	)
	for first := true; ; first = false {
		target, ok := q.Pop()
		if !ok {
			break
		}
		if !first {
			if err := pause(ctx, c.Delay); err != nil {
				q.HandleError(target, err, "Cancelled")
				break
			}
		}

		var got []types.Item
		if target.Kind == pipeline.KindInfiniteScroll {
			got, err = b.InfiniteScroll(ctx, target.URL)
		} else {
			got, err = b.AJAX(ctx, target.URL)
		}
		if err != nil {
			q.HandleError(target, err, "")
			panel.AddSite(ui.SiteResult{Name: target.Name, URL: target.URL, Err: err})
			continue
		}

		for i := range got {
			got[i].SourceURL = target.URL
			got[i].SiteName = target.Name
		}
		q.Done(target, len(got))
		panel.AddSite(ui.SiteResult{Name: target.Name, URL: target.URL, Items: len(got)})
		items = append(items, got...)
		sites = append(sites, target.Name)
	}

	return c.finish(ctx, app, panel, items, sites)
}

func (c *DynamicCmd) finish(ctx context.Context, app *App, panel *ui.RunPanel, items []types.Item, sites []string) error {
	app.printItems(items, 10)
	stats := ui.RunStats{Title: "Dynamic Scrape", EndTime: time.Now()}

	if len(items) > 0 {
		path, err := app.Files.WriteItems(c.File, items)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout, "\nSuccessfully saved %d items to '%s'\n", len(items), path)
		stats.Output = path

		if c.Save {
			saved, err := app.saveBatch(ctx, pipeline.FromDynamicItems(items), sites)
			if err != nil {
				return err
			}
			stats.Saved = saved.Total()
		}
	}

	finishPanel(app, panel, stats)
	return nil
}

type MultipageCmd struct {
	Pages     int           `help:"Number of listing pages to follow (defaults to the configured maxPages)"`
	Static    bool          `help:"Follow pagination over plain HTTP instead of Chrome"`
	Headless  bool          `help:"Run Chrome without a window" default:"true" negatable:""`
	Snapshots bool          `help:"Write the HTML of every page read to the output directory"`
	Delay     time.Duration `help:"Pause between sites" default:"2s"`
	File      string        `help:"Output CSV file" default:"multi_page_scraped_data.csv"`
	Save      bool          `help:"Also store the items in the database"`
}

const (
	paginationSite = "Quotes Pagination"
	ecommerceSite  = "E-commerce Products"
)

func (c *MultipageCmd) Run(ctx context.Context, app *App) error {
	pages := c.Pages
	if pages <= 0 {
		pages = app.Config.MaxPages
	}

	panel := app.newPanel()
	panel.UpdateStats(ui.RunStats{Title: "Multi-page Scrape", StartTime: time.Now()})
	bar := progress.New(app.Stderr, pages)

	var (
		quotes, products []types.Item
		qErr, pErr       error
	)
	if c.Static {
		quotes, qErr = c.paginateStatic(ctx, app, pages, bar)
		finishBar(app, bar, pages)
		if err := pause(ctx, c.Delay); err != nil {
			return err
		}
		products, pErr = c.productsStatic(ctx, app)
	} else {
		b, err := app.browser(c.Headless, c.Snapshots)
		if err != nil {
			return err
		}
		defer b.Close()

		quotes, qErr = b.Paginate(ctx, app.Config.Targets.Pagination, pages, func(page, items int) {
			bar.Advance(fmt.Sprintf("page %d: %d items", page, items))
		})
		finishBar(app, bar, pages)
		if err := pause(ctx, c.Delay); err != nil {
			return err
		}
		products, pErr = b.Ecommerce(ctx, app.Config.Targets.Ecommerce)
	}

	var sites []string
	record := func(name, url string, got []types.Item, err error) {
		for i := range got {
			got[i].SiteName = name
		}
		panel.AddSite(ui.SiteResult{Name: name, URL: url, Items: len(got), Err: err})
		if err == nil {
			sites = append(sites, name)
		}
	}
	record(paginationSite, app.Config.Targets.Pagination, quotes, qErr)
	record(ecommerceSite, app.Config.Targets.Ecommerce, products, pErr)

	items := append(quotes, products...)
	app.printItems(items, 10)
	stats := ui.RunStats{Title: "Multi-page Scrape", EndTime: time.Now()}

	if len(items) > 0 {
		path, err := app.Files.WriteItems(c.File, items)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout, "\nSuccessfully saved %d items to '%s'\n", len(items), path)
		stats.Output = path

		if c.Save {
			scraper := types.ScraperDynamic
			if c.Static {
				scraper = types.ScraperStatic
			}
			saved, err := app.saveBatch(ctx, pipeline.FromItems(items, scraper), sites)
			if err != nil {
				return err
			}
			stats.Saved = saved.Total()
		}
	}

	finishPanel(app, panel, stats)
	return nil
}

func (c *MultipageCmd) paginateStatic(ctx context.Context, app *App, pages int, bar *progress.Tracker) ([]types.Item, error) {
	p := app.paginator(pages)

	var items []types.Item
	err := p.Crawl(ctx, app.Config.Targets.Pagination, func(page int, url string, dom *goquery.Selection) {
		if len(dom.Nodes) == 0 {
			return
		}
		doc := goquery.NewDocumentFromNode(dom.Nodes[0])
		got := extract.QuotesOrParagraphs(doc, page, url, 10)
		items = append(items, got...)
		bar.Advance(fmt.Sprintf("page %d: %d items", page, len(got)))
	})
	if err != nil {
		app.Logger.Error("pagination failed", "err", err)
	}
	return items, err
}

func (c *MultipageCmd) productsStatic(ctx context.Context, app *App) ([]types.Item, error) {
	url := app.Config.Targets.Ecommerce
	doc, err := app.client().Document(ctx, url)
	if err != nil {
		app.Logger.Error("ecommerce scrape failed", "url", url, "err", err)
		return nil, err
	}
	items := extract.Products(doc, productLimit, url)
	app.Logger.Info("products found", "url", url, "items", len(items))
	return items, nil
}

// finishBar ends the progress line and notes a crawl that ran out of pages
func finishBar(app *App, bar *progress.Tracker, pages int) {
	bar.Finish()
	if p := bar.Percent(); p < 1 {
		app.Logger.Info("pagination stopped before the page limit",
			"limit", pages, "read", fmt.Sprintf("%.0f%%", p*100))
	}
}

// finishPanel merges the end-of-run values into the panel and prints it
func finishPanel(app *App, panel *ui.RunPanel, end ui.RunStats) {
	stats := panel.Stats()
	stats.EndTime = end.EndTime
	stats.Output = end.Output
	stats.Saved = end.Saved
	panel.UpdateStats(stats)
	fmt.Fprintln(app.Stdout, panel.View())
}
