package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/go-scripts/scrape/internal/extract"
)

var (
	ErrDisallowed = errors.New("disallowed by robots.txt")
	ErrStatus     = errors.New("unexpected status")
)

type Options struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

// Client performs single GET requests with a browser user agent. There is
// no retry.
type Client struct {
	http   *resty.Client
	robots *Robots
	agent  string
	logger *log.Logger
}

func New(opts Options, logger *log.Logger) *Client {
	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)

	c := &Client{
		http:   client,
		agent:  opts.UserAgent,
		logger: logger.WithPrefix("fetch"),
	}
	if opts.RespectRobots {
		c.robots = NewRobots(client, c.logger)
	}
	return c
}

// Fetch returns the body of url. Non-2xx responses are errors.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.robots != nil {
		if !c.robots.Allowed(ctx, url, c.agent) {
			c.logger.Warn("skipping disallowed url", "url", url)
			return nil, fmt.Errorf("GET %s: %w", url, ErrDisallowed)
		}
	}

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		c.logger.Error("request failed", "url", url, "err", err)
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() || res.StatusCode() >= 300 {
		c.logger.Error("bad status", "url", url, "status", res.Status())
		return nil, fmt.Errorf("GET %s: %w: %s", url, ErrStatus, res.Status())
	}

	c.logger.Info("fetched", "url", url, "bytes", len(res.Body()), "took", time.Since(start).Round(time.Millisecond))
	return res.Body(), nil
}

// Document fetches url and parses it as HTML
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return extract.Parse(bytes.NewReader(body))
}
