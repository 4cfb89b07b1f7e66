package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

type Options struct {
	Headless  bool
	UserAgent string
	// Snapshot, when set, receives the HTML of every page that was read
	Snapshot func(url, html string)
}

// Scraper drives one Chrome instance shared by every scrape call
type Scraper struct {
	opts          Options
	logger        *log.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New launches the browser. Close must be called to shut it down.
func New(opts Options, logger *log.Logger) (*Scraper, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if !opts.Headless {
		execOpts = append(execOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	logger = logger.WithPrefix("browser")
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	// start the browser now so a missing Chrome fails early
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Info("browser started", "headless", opts.Headless)

	return &Scraper{
		opts:          opts,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close cleans up browser resources
func (s *Scraper) Close() {
	s.browserCancel()
	s.allocCancel()
	s.logger.Info("browser closed")
}

// tab opens a new tab that also closes when ctx is done. The target is
// attached here, with the tab's own lifetime, so later Runs may carry
// timeouts without tearing down its event loop.
func (s *Scraper) tab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	stop := context.AfterFunc(ctx, cancel)
	closeTab := func() {
		stop()
		cancel()
	}
	if err := chromedp.Run(tabCtx); err != nil {
		closeTab()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return tabCtx, closeTab, nil
}

// open navigates and waits up to wait for the body to exist. tabCtx must come
// from tab.
func (s *Scraper) open(tabCtx context.Context, url string, wait time.Duration) error {
	waitCtx, cancel := context.WithTimeout(tabCtx, wait)
	defer cancel()

	err := chromedp.Run(waitCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// snapshot returns the current document HTML and location
func (s *Scraper) snapshot(tabCtx context.Context) (string, string, error) {
	var html, location string
	err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to read page: %w", err)
	}
	if s.opts.Snapshot != nil {
		s.opts.Snapshot(location, html)
	}
	return html, location, nil
}
