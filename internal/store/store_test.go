package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/scrape/internal/logging"
	"github.com/go-scripts/scrape/internal/types"
)

func setup(t testing.TB) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "scraping_data.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var sampleQuotes = []types.Quote{
	{
		Text:      "The only way to do great work is to love what you do.",
		Author:    "Steve Jobs",
		Tags:      types.Tags{"work", "passion", "greatness"},
		Page:      1,
		SourceURL: "https://quotes.toscrape.com/",
	},
	{
		Text:      "Life is what happens when you are busy making other plans.",
		Author:    "John Lennon",
		Tags:      types.Tags{"life", "plans"},
		Page:      2,
		SourceURL: "https://quotes.toscrape.com/",
		Scraper:   types.ScraperDynamic,
	},
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scraping_data.db")
	ctx := context.Background()

	s, err := Open(ctx, path, logging.Discard())
	require.NoError(t, err)
	_, err = s.SaveQuotes(ctx, sampleQuotes)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, logging.Discard())
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Quotes)
}

func TestSessionLifecycle(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	id, err := s.StartSession(ctx)
	require.NoError(t, err)
	require.NotEqual(t, NoSession, id)

	sess, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.SessionRunning, sess.Status)
	assert.Nil(t, sess.EndTime)
	assert.False(t, sess.StartTime.IsZero())

	require.NoError(t, s.EndSession(ctx, id, 12, "Inspirational Quotes, Dynamic Sites"))

	sess, err = s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, sess.Status)
	require.NotNil(t, sess.EndTime)
	assert.False(t, sess.EndTime.Before(sess.StartTime))
	assert.Equal(t, 12, sess.TotalRecords)
	assert.Equal(t, "Inspirational Quotes, Dynamic Sites", sess.Websites)

	// a second call is not rejected and overwrites the totals
	require.NoError(t, s.EndSession(ctx, id, 20, "Other"))
	sess, err = s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 20, sess.TotalRecords)
	assert.Equal(t, "Other", sess.Websites)
}

func TestStartSessionOnClosedStore(t *testing.T) {
	s := setup(t)
	require.NoError(t, s.Close())

	id, err := s.StartSession(context.Background())
	assert.Error(t, err)
	assert.Equal(t, NoSession, id)
}

func TestSaveQuotesAppliesDefaultsAndScore(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	n, err := s.SaveQuotes(ctx, append(slices.Clone(sampleQuotes), types.Quote{Text: "Hi"}))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	quotes, err := s.Quotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, 100, quotes[0].QualityScore)
	assert.Equal(t, types.Tags{"work", "passion", "greatness"}, quotes[0].Tags)
	assert.Equal(t, types.ScraperStatic, quotes[0].Scraper)
	assert.Equal(t, types.ScraperDynamic, quotes[1].Scraper)
	assert.False(t, quotes[0].Timestamp.IsZero())

	hi := quotes[2]
	assert.Equal(t, types.UnknownAuthor, hi.Author)
	assert.Equal(t, 40, hi.QualityScore)
	assert.Equal(t, 1, hi.Page)
}

func TestSaveProducts(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	n, err := s.SaveProducts(ctx, []types.Product{
		{Name: "Wireless Mouse", Price: types.ParsePrice("$29.99"), Category: "Electronics", Available: true},
		{Price: types.ParsePrice("call us")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := s.db.Query(`SELECT product_name, price, price_amount, price_currency, category FROM products ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	type product struct {
		name, price, category string
		amount                sql.NullFloat64
		currency              sql.NullString
	}
	var got []product
	for rows.Next() {
		var p product
		require.NoError(t, rows.Scan(&p.name, &p.price, &p.amount, &p.currency, &p.category))
		got = append(got, p)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)

	assert.Equal(t, "Wireless Mouse", got[0].name)
	assert.InDelta(t, 29.99, got[0].amount.Float64, 1e-9)
	assert.Equal(t, "USD", got[0].currency.String)

	assert.Equal(t, "Unknown Product", got[1].name)
	assert.Equal(t, "call us", got[1].price)
	assert.False(t, got[1].amount.Valid)
	assert.False(t, got[1].currency.Valid)
	assert.Equal(t, "General", got[1].category)
}

func TestSaveContentComputesCounts(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.SaveContent(ctx, []types.Content{{Text: "Hello world"}})
	require.NoError(t, err)

	var (
		typ           string
		length, words int
	)
	require.NoError(t, s.db.QueryRow(`SELECT content_type, content_length, word_count FROM general_content`).Scan(&typ, &length, &words))
	assert.Equal(t, "unknown", typ)
	assert.Equal(t, 11, length)
	assert.Equal(t, 2, words)
}

func TestStats(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.SaveQuotes(ctx, []types.Quote{
		{Text: "Imagination is more important than knowledge.", Author: "Albert Einstein"},
		{Text: "Life is like riding a bicycle.", Author: "Albert Einstein"},
		{Text: "Anonymous words"},
	})
	require.NoError(t, err)
	_, err = s.SaveContent(ctx, []types.Content{{Text: "a"}, {Text: "b"}})
	require.NoError(t, err)

	var ids []int64
	for i := 0; i < 4; i++ {
		id, err := s.StartSession(ctx)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Quotes)
	assert.Equal(t, 0, st.Products)
	assert.Equal(t, 2, st.Content)
	assert.Equal(t, 4, st.Sessions)
	assert.Equal(t, []AuthorCount{{"Albert Einstein", 2}, {"Unknown", 1}}, st.TopAuthors)

	require.Len(t, st.RecentSessions, 3)
	assert.Equal(t, ids[3], st.RecentSessions[0].ID)
	assert.Equal(t, ids[2], st.RecentSessions[1].ID)
	assert.Equal(t, ids[1], st.RecentSessions[2].ID)
}

func TestExportRoundTrip(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.SaveQuotes(ctx, sampleQuotes)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "quotes.csv")
	name, err := s.Export(ctx, TableQuotes, path)
	require.NoError(t, err)
	assert.Equal(t, path, name)

	header, rows, err := LoadExport(path)
	require.NoError(t, err)
	require.Len(t, rows, len(sampleQuotes))

	wantHeader, wantRows, err := s.dump(ctx, TableQuotes)
	require.NoError(t, err)
	assert.Equal(t, wantHeader, header)
	assert.Equal(t, wantRows, rows)

	author := slices.Index(header, "author")
	tags := slices.Index(header, "tags")
	require.GreaterOrEqual(t, author, 0)
	assert.Equal(t, "Steve Jobs", rows[0][author])
	assert.Equal(t, "work, passion, greatness", rows[0][tags])
}

func TestExportDefaultName(t *testing.T) {
	s := setup(t)
	testChdir(t, t.TempDir())

	name, err := s.Export(context.Background(), TableProducts, "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^products_export_\d{8}_\d{6}\.csv$`), name)

	_, err = os.Stat(name)
	require.NoError(t, err)

	header, rows, err := LoadExport(name)
	require.NoError(t, err)
	assert.Contains(t, header, "price_amount")
	assert.Empty(t, rows)
}

func TestExportRejectsUnknownTable(t *testing.T) {
	s := setup(t)

	name, err := s.Export(context.Background(), "quotes; DROP TABLE quotes", "")
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Empty(t, name)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "42", stringify(int64(42)))
	assert.Equal(t, "29.99", stringify(29.99))
	assert.Equal(t, "abc", stringify([]byte("abc")))
	assert.Equal(t, "1", stringify(true))
}
