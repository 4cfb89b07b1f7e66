package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"

	"github.com/go-scripts/scrape/internal/browser"
	"github.com/go-scripts/scrape/internal/config"
	"github.com/go-scripts/scrape/internal/fetch"
	"github.com/go-scripts/scrape/internal/pipeline"
	"github.com/go-scripts/scrape/internal/report"
	"github.com/go-scripts/scrape/internal/store"
	"github.com/go-scripts/scrape/internal/types"
	"github.com/go-scripts/scrape/internal/writer"
	"github.com/go-scripts/scrape/ui"
)

// App is what every subcommand runs against
type App struct {
	Config config.Configuration
	Logger *log.Logger
	Files  *writer.FileWriter
	Stdout io.Writer
	// Stderr receives spinners and progress bars
	Stderr io.Writer
}

func (a *App) fetchOptions() fetch.Options {
	return fetch.Options{
		UserAgent:     a.Config.UserAgent,
		Timeout:       a.Config.Timeout(),
		RespectRobots: a.Config.RespectRobots,
	}
}

func (a *App) client() *fetch.Client {
	return fetch.New(a.fetchOptions(), a.Logger)
}

// paginator follows listing pages over plain HTTP, one second apart
func (a *App) paginator(pages int) *fetch.Paginator {
	return fetch.NewPaginator(a.fetchOptions(), pages, time.Second, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, a.Config.Output(a.Config.Database), a.Logger)
}

// browser launches Chrome. With snapshots on, the HTML of every page read is
// written next to the other outputs.
func (a *App) browser(headless, snapshots bool) (*browser.Scraper, error) {
	opts := browser.Options{
		Headless:  headless,
		UserAgent: a.Config.UserAgent,
	}
	if snapshots {
		opts.Snapshot = func(url, html string) {
			path, err := a.Files.WriteSnapshot(url, html)
			if err != nil {
				a.Logger.Warn("snapshot failed", "url", url, "err", err)
				return
			}
			a.Logger.Debug("snapshot written", "path", path)
		}
	}
	return browser.New(opts, a.Logger)
}

// saveBatch stores b inside its own scraping session
func (a *App) saveBatch(ctx context.Context, b pipeline.Batch, sites []string) (report.Counts, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return report.Counts{}, err
	}
	defer st.Close()

	id, err := st.StartSession(ctx)
	if err != nil {
		return report.Counts{}, err
	}

	var saved report.Counts
	if saved.Quotes, err = st.SaveQuotes(ctx, b.Quotes); err != nil {
		return saved, err
	}
	if saved.Products, err = st.SaveProducts(ctx, b.Products); err != nil {
		return saved, err
	}
	if saved.Content, err = st.SaveContent(ctx, b.Content); err != nil {
		return saved, err
	}
	if err := st.EndSession(ctx, id, saved.Total(), strings.Join(sites, ", ")); err != nil {
		return saved, err
	}

	fmt.Fprintf(a.Stdout, "Saved %d quotes, %d products, %d content items (session %d)\n",
		saved.Quotes, saved.Products, saved.Content, id)
	return saved, nil
}

// printItems shows the first n items the way the browser scripts do
func (a *App) printItems(items []types.Item, n int) {
	if len(items) == 0 {
		fmt.Fprintln(a.Stdout, "No data was scraped")
		return
	}
	fmt.Fprintln(a.Stdout, "\nSample of scraped data:")
	for i, it := range items[:min(n, len(items))] {
		switch it.Category {
		case types.CategoryProduct:
			fmt.Fprintf(a.Stdout, "  %d. [%s] %s (%s)\n", i+1, it.Category, it.Name, it.Price)
		case types.CategoryQuote:
			fmt.Fprintf(a.Stdout, "  %d. [%s] %s - %s\n", i+1, it.Category, it.Text, it.Author)
		default:
			fmt.Fprintf(a.Stdout, "  %d. [%s] %s\n", i+1, it.Category, it.Text)
		}
	}
}

// newPanel sizes the run panel to the terminal Stdout is attached to
func (a *App) newPanel() *ui.RunPanel {
	p := ui.NewRunPanel()
	if w := panelWidth(terminalColumns(a.Stdout)); w > 0 {
		p.SetWidth(w)
	}
	return p
}

// terminalColumns is 0 when w is not a terminal
func terminalColumns(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return 0
	}
	cols, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return cols
}

func panelWidth(cols int) int {
	if cols <= 0 {
		return 0
	}
	return max(40, min(cols-2, 100))
}

// pause waits d unless ctx ends first
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
