package fetch

import (
	"context"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
)

// Robots caches robots.txt per host
type Robots struct {
	client *resty.Client
	logger *log.Logger

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

func NewRobots(client *resty.Client, logger *log.Logger) *Robots {
	return &Robots{
		client: client,
		logger: logger,
		robots: make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether agent may fetch rawURL. Hosts whose robots.txt
// cannot be read are allowed.
func (r *Robots) Allowed(ctx context.Context, rawURL, agent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base := u.Scheme + "://" + u.Host

	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.robots[base]
	if !ok {
		data = r.load(ctx, base)
		r.robots[base] = data
	}
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, agent)
}

func (r *Robots) load(ctx context.Context, base string) *robotstxt.RobotsData {
	res, err := r.client.R().
		SetContext(ctx).
		Get(base + "/robots.txt")
	if err != nil {
		r.logger.Debug("no robots.txt", "host", base, "err", err)
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
	if err != nil {
		r.logger.Debug("unreadable robots.txt", "host", base, "err", err)
		return nil
	}
	return data
}
