package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/queue"
	"github.com/go-scripts/scrape/internal/report"
	"github.com/go-scripts/scrape/internal/store"
	"github.com/go-scripts/scrape/internal/types"
)

const (
	KindStatic         = "static"
	KindInfiniteScroll = "infinite_scroll"
	KindAJAX           = "ajax"
)

// StaticScraper fetches and parses one page over plain HTTP
type StaticScraper interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// DynamicScraper reads pages that need a browser
type DynamicScraper interface {
	InfiniteScroll(ctx context.Context, url string) ([]types.Item, error)
	AJAX(ctx context.Context, url string) ([]types.Item, error)
}

type Options struct {
	Static     queue.Target
	Dynamic    []queue.Target
	Links      int
	Paragraphs int
	// SiteDelay is the pause between two dynamic sites
	SiteDelay time.Duration
	// Spinner receives the per-site spinner. Nil disables it.
	Spinner io.Writer
}

// Pipeline scrapes one static and several dynamic sites into the store,
// bracketed by a scraping session
type Pipeline struct {
	store   *store.Store
	static  StaticScraper
	dynamic DynamicScraper
	opts    Options
	logger  *log.Logger
}

// New creates a pipeline. A nil dynamic scraper skips the browser phase.
func New(st *store.Store, static StaticScraper, dynamic DynamicScraper, opts Options, logger *log.Logger) *Pipeline {
	if opts.Links <= 0 {
		opts.Links = 10
	}
	if opts.Paragraphs <= 0 {
		opts.Paragraphs = 5
	}
	return &Pipeline{
		store:   st,
		static:  static,
		dynamic: dynamic,
		opts:    opts,
		logger:  logger.WithPrefix("pipeline"),
	}
}

// Run performs one combined run. Scrape failures are logged and reported in
// the returned Run; only store failures abort it.
func (p *Pipeline) Run(ctx context.Context) (report.Run, error) {
	run := report.Run{Timestamp: time.Now()}
	p.logger.Info("starting combined pipeline")

	id, err := p.store.StartSession(ctx)
	if err != nil {
		return run, fmt.Errorf("failed to start session: %w", err)
	}
	run.SessionID = id

	var static Batch
	if p.static != nil && p.opts.Static.URL != "" {
		static, err = p.scrapeStatic(ctx)
		if err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("%s: %v", p.opts.Static.Name, err))
		} else {
			run.Sites = append(run.Sites, p.opts.Static.Name)
		}
	}
	run.Static = static.Counts()

	dynamic, sites, errs := p.scrapeDynamic(ctx)
	run.Sites = append(run.Sites, sites...)
	run.Errors = append(run.Errors, errs...)
	run.Dynamic = dynamic.Counts()

	// what was collected is kept even when the run was cancelled
	saveCtx := context.WithoutCancel(ctx)
	all := static
	all.Append(dynamic)
	saved, saveErr := p.save(saveCtx, all)
	run.Saved = saved

	if err := p.store.EndSession(saveCtx, id, saved.Total(), strings.Join(run.Sites, ", ")); err != nil {
		saveErr = errors.Join(saveErr, fmt.Errorf("failed to end session: %w", err))
	}
	if saveErr != nil {
		p.logger.Error("pipeline finished with store errors", "session", id, "err", saveErr)
		return run, saveErr
	}

	p.logger.Info("combined pipeline completed", "session", id, "saved", saved.Total())
	return run, nil
}

func (p *Pipeline) scrapeStatic(ctx context.Context) (Batch, error) {
	url := p.opts.Static.URL

	doc, err := p.static.Document(ctx, url)
	if err != nil {
		p.logger.Error("static scrape failed", "url", url, "err", err)
		return Batch{}, err
	}

	page := extract.Page(doc, extract.PageOptions{Links: p.opts.Links, Paragraphs: p.opts.Paragraphs})
	p.logger.Info("static page read", "url", url, "links", len(page.Links), "paragraphs", len(page.Paragraphs))
	return FromStaticPage(page, url), nil
}

func (p *Pipeline) scrapeDynamic(ctx context.Context) (Batch, []string, []string) {
	var (
		b     Batch
		sites []string
		errs  []string
		items []types.Item
	)
	if p.dynamic == nil || len(p.opts.Dynamic) == 0 {
		return b, nil, nil
	}

	q := queue.New(p.opts.Spinner, p.logger)
	q.Push(p.opts.Dynamic...)

	for first := true; ; first = false {
		target, ok := q.Pop()
		if !ok {
			break
		}
		if !first && !sleep(ctx, p.opts.SiteDelay) {
			q.HandleError(target, ctx.Err(), "Cancelled")
			errs = append(errs, fmt.Sprintf("%s: %v", target.Name, ctx.Err()))
			break
		}

		var (
			got []types.Item
			err error
		)
		switch target.Kind {
		case KindInfiniteScroll:
			got, err = p.dynamic.InfiniteScroll(ctx, target.URL)
		case KindAJAX:
			got, err = p.dynamic.AJAX(ctx, target.URL)
		default:
			err = fmt.Errorf("unknown site kind %q", target.Kind)
		}
		if err != nil {
			q.HandleError(target, err, "")
			errs = append(errs, fmt.Sprintf("%s: %v", target.Name, err))
			continue
		}

		for i := range got {
			got[i].SourceURL = target.URL
			got[i].SiteName = target.Name
		}
		q.Done(target, len(got))
		items = append(items, got...)
		sites = append(sites, target.Name)
	}

	p.logger.Info("dynamic scrape finished", "items", len(items))
	b = FromDynamicItems(items)
	return b, sites, errs
}

func (p *Pipeline) save(ctx context.Context, b Batch) (report.Counts, error) {
	var (
		saved report.Counts
		errs  []error
		err   error
	)
	if saved.Quotes, err = p.store.SaveQuotes(ctx, b.Quotes); err != nil {
		errs = append(errs, err)
	}
	if saved.Products, err = p.store.SaveProducts(ctx, b.Products); err != nil {
		errs = append(errs, err)
	}
	if saved.Content, err = p.store.SaveContent(ctx, b.Content); err != nil {
		errs = append(errs, err)
	}
	p.logger.Info("saved combined data", "quotes", saved.Quotes, "products", saved.Products, "content", saved.Content)
	return saved, errors.Join(errs...)
}

// sleep waits for d or until ctx is done, reporting whether the full wait
// elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
