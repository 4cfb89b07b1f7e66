package browser

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/types"
)

const (
	scrollWait  = 10 * time.Second
	ajaxWait    = 15 * time.Second
	ajaxSettle  = 3 * time.Second
	scrollPause = 2 * time.Second
	scrollCount = 3
)

const scrollJS = `window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`

// InfiniteScroll reads the page, scrolls to the bottom three times and keeps
// any item whose text was not seen before.
func (s *Scraper) InfiniteScroll(ctx context.Context, url string) ([]types.Item, error) {
	tabCtx, cancel, err := s.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := s.open(tabCtx, url, scrollWait); err != nil {
		s.logger.Error("infinite scroll failed", "url", url, "err", err)
		return nil, err
	}

	items, err := s.content(tabCtx, url)
	if err != nil {
		return nil, err
	}
	s.logger.Info("initial content", "url", url, "items", len(items))

	seen := newSeen(items)
	for i := 0; i < scrollCount; i++ {
		var height float64
		err := chromedp.Run(tabCtx,
			chromedp.Evaluate(scrollJS, &height),
			chromedp.Sleep(scrollPause),
		)
		if err != nil {
			s.logger.Warn("scroll failed", "scroll", i+1, "err", err)
			break
		}

		more, err := s.content(tabCtx, url)
		if err != nil {
			s.logger.Warn("read after scroll failed", "scroll", i+1, "err", err)
			break
		}
		fresh := seen.filter(more)
		s.logger.Info("scrolled", "scroll", i+1, "height", height, "new", len(fresh))
		items = append(items, fresh...)
	}

	return items, nil
}

// AJAX waits for the body, lets scripts settle and reads the page once
func (s *Scraper) AJAX(ctx context.Context, url string) ([]types.Item, error) {
	tabCtx, cancel, err := s.tab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := s.open(tabCtx, url, ajaxWait); err != nil {
		s.logger.Error("ajax scrape failed", "url", url, "err", err)
		return nil, err
	}
	if err := chromedp.Run(tabCtx, chromedp.Sleep(ajaxSettle)); err != nil {
		return nil, err
	}

	items, err := s.content(tabCtx, url)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ajax content", "url", url, "items", len(items))
	return items, nil
}

func (s *Scraper) content(tabCtx context.Context, url string) ([]types.Item, error) {
	html, _, err := s.snapshot(tabCtx)
	if err != nil {
		return nil, err
	}
	doc, err := extract.ParseString(html)
	if err != nil {
		return nil, err
	}
	return extract.GeneralContent(doc, url), nil
}

// seen tracks item texts by hash
type seen map[uint64]struct{}

func newSeen(items []types.Item) seen {
	s := make(seen, len(items))
	for _, it := range items {
		s[xxhash.Sum64String(it.Text)] = struct{}{}
	}
	return s
}

// filter returns the items whose text is new, remembering them
func (s seen) filter(items []types.Item) []types.Item {
	var out []types.Item
	for _, it := range items {
		h := xxhash.Sum64String(it.Text)
		if _, ok := s[h]; ok {
			continue
		}
		s[h] = struct{}{}
		out = append(out, it)
	}
	return out
}
