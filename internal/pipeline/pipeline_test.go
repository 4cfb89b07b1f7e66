package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/logging"
	"github.com/go-scripts/scrape/internal/queue"
	"github.com/go-scripts/scrape/internal/store"
	"github.com/go-scripts/scrape/internal/types"
)

const staticPage = `<html><head><title>Inspirational Quotes</title></head><body>
<a href="/">Home</a><a href="/about">About</a>
<p>Short</p>
<p>The best preparation for tomorrow is doing your best today.</p>
<p>Believe you can and you are halfway there.</p>
</body></html>`

type fakeStatic struct {
	html string
	err  error
	urls []string
}

func (f *fakeStatic) Document(_ context.Context, url string) (*goquery.Document, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return extract.ParseString(f.html)
}

type fakeDynamic struct {
	scroll  []types.Item
	ajax    []types.Item
	ajaxErr error
}

func (f *fakeDynamic) InfiniteScroll(context.Context, string) ([]types.Item, error) {
	return append([]types.Item(nil), f.scroll...), nil
}

func (f *fakeDynamic) AJAX(context.Context, string) ([]types.Item, error) {
	return append([]types.Item(nil), f.ajax...), f.ajaxErr
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "scraping_data.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

var (
	staticTarget = queue.Target{Name: "PassItOn", URL: "https://www.passiton.com/inspirational-quotes", Kind: KindStatic}
	scrollTarget = queue.Target{Name: "Infinite Scroll Practice", URL: "https://quotes.toscrape.com/scroll", Kind: KindInfiniteScroll}
	ajaxTarget   = queue.Target{Name: "AJAX Content Practice", URL: "https://webscraper.io/test-sites/e-commerce/ajax", Kind: KindAJAX}
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	static := &fakeStatic{html: staticPage}
	dynamic := &fakeDynamic{
		scroll: []types.Item{
			{Category: types.CategoryParagraph, Text: "“The world as we have created it is a process of our thinking.”"},
			{Category: types.CategoryHeading, Text: "Quotes to Scrape"},
			{Category: types.CategoryHeading, Text: "Login"},
		},
		ajax: []types.Item{
			{Category: types.CategoryListItem, Text: "Computers"},
		},
	}
	p := New(st, static, dynamic, Options{
		Static:  staticTarget,
		Dynamic: []queue.Target{scrollTarget, ajaxTarget},
	}, logging.Discard())

	run, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{staticTarget.URL}, static.urls)
	assert.Equal(t, 2, run.Static.Quotes)
	assert.Equal(t, 1, run.Static.Content)
	assert.Equal(t, 2, run.Dynamic.Quotes)
	assert.Equal(t, 2, run.Dynamic.Content)
	assert.Equal(t, 7, run.Saved.Total())
	assert.Empty(t, run.Errors)
	assert.Equal(t, []string{"PassItOn", "Infinite Scroll Practice", "AJAX Content Practice"}, run.Sites)

	sess, err := st.Session(ctx, run.SessionID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, sess.Status)
	assert.Equal(t, 7, sess.TotalRecords)
	assert.Equal(t, "PassItOn, Infinite Scroll Practice, AJAX Content Practice", sess.Websites)
	assert.NotNil(t, sess.EndTime)

	quotes, err := st.Quotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 4)
	assert.Equal(t, "Various", quotes[0].Author)
	assert.Equal(t, types.Tags{"inspirational"}, quotes[0].Tags)
	assert.Equal(t, types.ScraperStatic, quotes[0].Scraper)
	assert.Equal(t, types.Tags{"dynamic"}, quotes[3].Tags)
	assert.Equal(t, types.ScraperDynamic, quotes[3].Scraper)
	assert.Equal(t, scrollTarget.URL, quotes[3].SourceURL)
}

func TestRunRecordsScrapeFailures(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	static := &fakeStatic{err: errors.New("connection refused")}
	dynamic := &fakeDynamic{
		scroll:  []types.Item{{Category: types.CategoryParagraph, Text: "A short one"}},
		ajaxErr: errors.New("context deadline exceeded"),
	}
	p := New(st, static, dynamic, Options{
		Static:  staticTarget,
		Dynamic: []queue.Target{scrollTarget, ajaxTarget},
	}, logging.Discard())

	run, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, run.Errors, 2)
	assert.True(t, strings.HasPrefix(run.Errors[0], "PassItOn"))
	assert.Contains(t, run.Errors[1], "deadline")
	assert.Equal(t, []string{"Infinite Scroll Practice"}, run.Sites)
	assert.Equal(t, 1, run.Saved.Content)

	sess, err := st.Session(ctx, run.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.TotalRecords)
}

func TestRunWithoutBrowser(t *testing.T) {
	st := openStore(t)
	p := New(st, &fakeStatic{html: staticPage}, nil, Options{Static: staticTarget}, logging.Discard())

	run, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, run.Dynamic.Total())
	assert.Equal(t, 3, run.Saved.Total())
}

func TestRunCancelledBetweenSites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := openStore(t)

	dynamic := &fakeDynamic{scroll: []types.Item{{Category: types.CategoryHeading, Text: "Login"}}}
	p := New(st, nil, dynamic, Options{
		Dynamic:   []queue.Target{scrollTarget, ajaxTarget},
		SiteDelay: time.Hour,
	}, logging.Discard())

	time.AfterFunc(50*time.Millisecond, cancel)
	run, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Infinite Scroll Practice"}, run.Sites)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "AJAX Content Practice")
	assert.Equal(t, 1, run.Saved.Content)

	sess, err := st.Session(context.Background(), run.SessionID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, sess.Status)
}

func TestFromDynamicItems(t *testing.T) {
	items := []types.Item{
		{Category: types.CategoryParagraph, Text: "my favourite quote", SourceURL: "u"},
		{Category: types.CategoryHeading, Text: "Top Ten tags"},
		{Category: types.CategoryListItem, Text: "Laptops"},
		{Category: types.CategoryProduct, Name: "Asus", Price: types.ParsePrice("$295.99"), SiteName: "AJAX"},
	}
	b := FromDynamicItems(items)

	require.Len(t, b.Quotes, 1)
	assert.Equal(t, types.Quote{
		Text:      "my favourite quote",
		Author:    "Various",
		Tags:      types.Tags{"dynamic"},
		Page:      1,
		SourceURL: "u",
		Scraper:   types.ScraperDynamic,
	}, b.Quotes[0])

	want := []types.Content{
		{Type: "heading", Text: "Top Ten tags", Length: 12, WordCount: 3, Scraper: types.ScraperDynamic},
		{Type: "list_item", Text: "Laptops", Length: 7, WordCount: 1, Scraper: types.ScraperDynamic},
	}
	if diff := cmp.Diff(want, b.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, b.Products, 1)
	assert.True(t, b.Products[0].Available)
	assert.Equal(t, "AJAX", b.Products[0].Category)
}

func TestFromStaticPage(t *testing.T) {
	b := FromStaticPage(extract.PageData{Title: "Quotes", HasTitle: true, Paragraphs: []string{"Keep going, you are doing great."}}, "https://example.com")
	require.Len(t, b.Quotes, 1)
	assert.Equal(t, types.ScraperStatic, b.Quotes[0].Scraper)
	require.Len(t, b.Content, 1)
	assert.Equal(t, "page_title", b.Content[0].Type)
	assert.Equal(t, 6, b.Content[0].Length)

	untitled := FromStaticPage(extract.PageData{}, "https://example.com")
	assert.Empty(t, untitled.Content)
}

func TestFromItems(t *testing.T) {
	b := FromItems([]types.Item{
		{Category: types.CategoryQuote, Text: "q", Author: "A", Page: 2},
		{Category: types.CategoryProduct, Name: "p"},
		{Category: types.CategoryParagraph, Text: "para"},
	}, types.ScraperDynamic)
	assert.Equal(t, 1, b.Counts().Quotes)
	assert.Equal(t, 1, b.Counts().Products)
	assert.Equal(t, 1, b.Counts().Content)
	assert.Equal(t, 2, b.Quotes[0].Page)
}
