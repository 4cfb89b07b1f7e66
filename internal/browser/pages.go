package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/types"
)

const (
	pageWait         = 10 * time.Second
	pagePause        = 2 * time.Second
	fallbackParas    = 10
	productLimit     = 10
	nextPageSelector = "li.next a, a.next, [rel='next'], .pagination .next a"
)

// clickNextJS clicks the first visible next-page control and reports
// whether there was one
func clickNextJS(selector string) string {
	sel, _ := json.Marshal(selector)
	return fmt.Sprintf(`(() => {
		for (const el of document.querySelectorAll(%s)) {
			if (el.offsetParent !== null && !el.disabled) {
				el.click();
				return true;
			}
		}
		return false;
	})()`, sel)
}

// Paginate reads up to maxPages pages starting at url, following the next
// page control. onPage, when not nil, is called after each page.
func (s *Scraper) Paginate(ctx context.Context, url string, maxPages int, onPage func(page, items int)) ([]types.Item, error) {
	tabCtx, cancel, err := s.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := s.open(tabCtx, url, pageWait); err != nil {
		s.logger.Error("pagination failed", "url", url, "err", err)
		return nil, err
	}

	var all []types.Item
	for page := 1; page <= maxPages; page++ {
		html, location, err := s.snapshot(tabCtx)
		if err != nil {
			s.logger.Error("failed to read page", "page", page, "err", err)
			break
		}
		doc, err := extract.ParseString(html)
		if err != nil {
			s.logger.Error("failed to parse page", "page", page, "err", err)
			break
		}

		items := extract.QuotesOrParagraphs(doc, page, location, fallbackParas)
		all = append(all, items...)
		s.logger.Info("page done", "page", page, "of", maxPages, "items", len(items))
		if onPage != nil {
			onPage(page, len(items))
		}

		if page == maxPages {
			break
		}
		if !s.next(tabCtx) {
			s.logger.Info("no more pages", "page", page)
			break
		}
	}

	return all, nil
}

func (s *Scraper) next(tabCtx context.Context) bool {
	waitCtx, cancel := context.WithTimeout(tabCtx, pageWait)
	defer cancel()

	var clicked bool
	if err := chromedp.Run(waitCtx, chromedp.Evaluate(clickNextJS(nextPageSelector), &clicked)); err != nil {
		s.logger.Warn("could not find next page", "err", err)
		return false
	}
	if !clicked {
		return false
	}

	err := chromedp.Run(waitCtx,
		chromedp.Sleep(pagePause),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		s.logger.Warn("next page did not load", "err", err)
		return false
	}
	return true
}

// Ecommerce reads the first product cards of a listing page
func (s *Scraper) Ecommerce(ctx context.Context, url string) ([]types.Item, error) {
	tabCtx, cancel, err := s.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := s.open(tabCtx, url, pageWait); err != nil {
		s.logger.Error("ecommerce scrape failed", "url", url, "err", err)
		return nil, err
	}

	html, location, err := s.snapshot(tabCtx)
	if err != nil {
		return nil, err
	}
	doc, err := extract.ParseString(html)
	if err != nil {
		return nil, err
	}

	items := extract.Products(doc, productLimit, location)
	s.logger.Info("products found", "url", url, "items", len(items))
	return items, nil
}
