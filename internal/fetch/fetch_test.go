package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/scrape/internal/logging"
)

const testAgent = "scrape-test/1.0"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html><head><title>Quotes</title></head><body><p>hello there</p></body></html>")
	})
	mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secret")
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	c := New(Options{UserAgent: testAgent, Timeout: 5 * time.Second}, logging.Discard())

	body, err := c.Fetch(context.Background(), srv.URL+"/quotes")
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>Quotes</title>")

	doc, err := c.Document(context.Background(), srv.URL+"/quotes")
	require.NoError(t, err)
	assert.Equal(t, "Quotes", doc.Find("title").Text())
}

func TestFetchStatusError(t *testing.T) {
	srv := newServer(t)
	c := New(Options{UserAgent: testAgent, Timeout: 5 * time.Second}, logging.Discard())

	_, err := c.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestFetchConnectionError(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	c := New(Options{UserAgent: testAgent, Timeout: time.Second}, logging.Discard())
	_, err := c.Fetch(context.Background(), url+"/quotes")
	assert.Error(t, err)
}

func TestFetchRespectsRobots(t *testing.T) {
	srv := newServer(t)
	c := New(Options{UserAgent: testAgent, Timeout: 5 * time.Second, RespectRobots: true}, logging.Discard())

	_, err := c.Fetch(context.Background(), srv.URL+"/private/page")
	assert.ErrorIs(t, err, ErrDisallowed)

	_, err = c.Fetch(context.Background(), srv.URL+"/quotes")
	assert.NoError(t, err)

	// robots are ignored unless asked for
	plain := New(Options{UserAgent: testAgent, Timeout: 5 * time.Second}, logging.Discard())
	_, err = plain.Fetch(context.Background(), srv.URL+"/private/page")
	assert.NoError(t, err)
}

func TestRobotsMissingFileAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(Options{UserAgent: testAgent, Timeout: 5 * time.Second, RespectRobots: true}, logging.Discard())
	assert.True(t, c.robots.Allowed(context.Background(), srv.URL+"/anything", testAgent))
}

func paginatedServer(t *testing.T, pages int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for i := 1; i <= pages; i++ {
		path := "/"
		if i > 1 {
			path = fmt.Sprintf("/page/%d/", i)
		}
		next := ""
		if i < pages {
			next = fmt.Sprintf(`<ul class="pager"><li class="next"><a href="/page/%d/">Next</a></li></ul>`, i+1)
		}
		body := fmt.Sprintf(`<html><body><div class="quote"><span class="text">Quote %d</span></div>%s</body></html>`, i, next)
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != path {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPaginatorStopsAtMaxPages(t *testing.T) {
	srv := paginatedServer(t, 5)
	p := NewPaginator(Options{UserAgent: testAgent}, 3, time.Millisecond, logging.Discard())

	var pages []int
	var texts []string
	err := p.Crawl(context.Background(), srv.URL+"/", func(page int, url string, dom *goquery.Selection) {
		pages = append(pages, page)
		texts = append(texts, strings.TrimSpace(dom.Find("span.text").Text()))
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, pages)
	assert.Equal(t, []string{"Quote 1", "Quote 2", "Quote 3"}, texts)
}

func TestPaginatorStopsWithoutNextLink(t *testing.T) {
	srv := paginatedServer(t, 2)
	p := NewPaginator(Options{UserAgent: testAgent}, 10, time.Millisecond, logging.Discard())

	var count int
	err := p.Crawl(context.Background(), srv.URL+"/", func(int, string, *goquery.Selection) { count++ })
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPaginatorReportsErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewPaginator(Options{UserAgent: testAgent}, 3, time.Millisecond, logging.Discard())
	err := p.Crawl(context.Background(), srv.URL+"/", func(int, string, *goquery.Selection) {
		t.Fatal("no page expected")
	})
	assert.Error(t, err)
}
