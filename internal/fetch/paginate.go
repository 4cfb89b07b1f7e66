package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
)

const NextPageSelector = "li.next a[href]"

// PageFunc receives each page in visiting order, numbered from 1
type PageFunc func(page int, url string, dom *goquery.Selection)

// Paginator follows the "next" link of a listing without a browser
type Paginator struct {
	UserAgent     string
	MaxPages      int
	Delay         time.Duration
	RespectRobots bool

	logger *log.Logger
}

func NewPaginator(opts Options, maxPages int, delay time.Duration, logger *log.Logger) *Paginator {
	return &Paginator{
		UserAgent:     opts.UserAgent,
		MaxPages:      maxPages,
		Delay:         delay,
		RespectRobots: opts.RespectRobots,
		logger:        logger.WithPrefix("paginate"),
	}
}

// Crawl visits startURL and its successors, handing every page to fn. It
// stops after MaxPages pages, when there is no next link or when ctx ends.
func (p *Paginator) Crawl(ctx context.Context, startURL string, fn PageFunc) error {
	c := colly.NewCollector(
		colly.UserAgent(p.UserAgent),
		colly.MaxDepth(p.MaxPages),
	)
	c.IgnoreRobotsTxt = !p.RespectRobots
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: p.Delay}); err != nil {
		return fmt.Errorf("paginate: %w", err)
	}

	var errs []error
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		p.logger.Info("visiting", "page", r.Depth, "url", r.URL)
	})
	c.OnHTML("html", func(e *colly.HTMLElement) {
		fn(e.Request.Depth, e.Request.URL.String(), e.DOM)
	})
	c.OnHTML(NextPageSelector, func(e *colly.HTMLElement) {
		// past MaxPages or already visited
		if err := e.Request.Visit(e.Attr("href")); err != nil {
			p.logger.Debug("next page not followed", "href", e.Attr("href"), "err", err)
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		p.logger.Error("page failed", "url", r.Request.URL, "status", r.StatusCode, "err", err)
		errs = append(errs, fmt.Errorf("GET %s: %w", r.Request.URL, err))
	})

	if err := c.Visit(startURL); err != nil {
		return fmt.Errorf("paginate %s: %w", startURL, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
