package queue

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/scrape/internal/logging"
)

func TestQueueOrderAndDedup(t *testing.T) {
	q := New(nil, logging.Discard())
	q.Push(
		Target{Name: "Infinite Scroll Practice", URL: "https://quotes.toscrape.com/scroll", Kind: "infinite_scroll"},
		Target{Name: "AJAX Content Practice", URL: "https://webscraper.io/test-sites/e-commerce/ajax", Kind: "ajax"},
		Target{Name: "again", URL: "https://quotes.toscrape.com/scroll"},
	)
	assert.Equal(t, 2, q.Len())

	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "infinite_scroll", first.Kind)
	q.Done(first, 3)

	second, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "ajax", second.Kind)
	q.HandleError(second, errors.New("timeout"), "Navigation failed")

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Zero(t, q.Len())
}

func TestQueueWithNonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	q := New(&buf, logging.Discard())
	q.Push(Target{Name: "Quotes", URL: "https://quotes.toscrape.com/"})

	tgt, ok := q.Pop()
	require.True(t, ok)
	q.HandleError(tgt, errors.New("boom"), "")
	q.Done(tgt, 0)
	assert.Zero(t, q.Len())
}

func TestFormatSpinnerMessage(t *testing.T) {
	assert.Equal(t, "https://example.com/a", formatSpinnerMessage("https://example.com/a"))

	long := "https://webscraper.io/test-sites/e-commerce/allinone/computers/laptops"
	got := formatSpinnerMessage(long)
	assert.LessOrEqual(t, len(got), 40)
	assert.Contains(t, got, "webscraper.io")
	assert.Contains(t, got, "laptops")
}

func TestErrorLineCutsByCharacter(t *testing.T) {
	assert.Equal(t, "✗ Quotes: ERROR: timeout\n", errorLine("Quotes", "timeout"))

	line := errorLine("Quotes", strings.Repeat("é", 60))
	assert.True(t, utf8.ValidString(line))
	assert.Equal(t, "✗ Quotes: ERROR: "+strings.Repeat("é", 40)+"...\n", line)
}

func TestFormatSpinnerMessageMultiByte(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("ü", 60)
	got := formatSpinnerMessage(long)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 40)
	assert.True(t, strings.HasPrefix(got, "example.com..."))

	noHost := strings.Repeat("ß", 50)
	got = formatSpinnerMessage(noHost)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "..."+strings.Repeat("ß", 40), got)
}
