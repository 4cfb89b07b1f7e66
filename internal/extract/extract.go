package extract

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Parse reads an HTML document
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// ParseString reads an HTML snapshot, as returned by the browser
func ParseString(html string) (*goquery.Document, error) {
	return Parse(strings.NewReader(html))
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// Truncate cuts s to at most n characters
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// first calls fn for at most n elements of s, in document order
func first(s *goquery.Selection, n int, fn func(*goquery.Selection)) {
	s.EachWithBreak(func(i int, el *goquery.Selection) bool {
		if i >= n {
			return false
		}
		fn(el)
		return true
	})
}
