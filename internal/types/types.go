package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Scraper names the fetch path a record came from
type Scraper string

const (
	ScraperStatic  Scraper = "static"
	ScraperDynamic Scraper = "dynamic"
)

// Category tags a flat item with the kind of content it holds
type Category string

const (
	CategoryQuote     Category = "quote"
	CategoryProduct   Category = "product"
	CategoryParagraph Category = "paragraph"
	CategoryHeading   Category = "heading"
	CategoryListItem  Category = "list_item"
	CategoryPageTitle Category = "page_title"
	CategoryLink      Category = "link"
)

// Item is the loosely typed record every extractor emits. Only the fields
// relevant to its Category are set.
type Item struct {
	Category    Category
	Page        int
	Text        string
	Author      string
	Tags        Tags
	Name        string
	Price       Price
	Description string
	SourceURL   string
	SiteName    string
}

// Quote represents a quote with its author and tags
type Quote struct {
	ID           int64
	Text         string
	Author       string
	Tags         Tags
	Page         int
	SourceURL    string
	Scraper      Scraper
	Timestamp    time.Time
	QualityScore int
}

// Product represents one product card
type Product struct {
	ID          int64
	Name        string
	Price       Price
	Description string
	Category    string
	SourceURL   string
	Scraper     Scraper
	Timestamp   time.Time
	Available   bool
}

// Content is a generic piece of page text (paragraph, heading, list item...)
type Content struct {
	ID        int64
	Type      string
	Text      string
	SourceURL string
	Length    int
	WordCount int
	Scraper   Scraper
	Timestamp time.Time
}

// Session brackets one scraping run
type Session struct {
	ID           int64
	StartTime    time.Time
	EndTime      *time.Time
	TotalRecords int
	Status       string
	Websites     string
}

const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
)

// RawRow is one line of the two-column `Data Type`,`Content` export
type RawRow struct {
	DataType string
	Content  string
}

const UnknownAuthor = "Unknown"

// QualityScore rates how complete a quote is on a 0-100 scale.
func QualityScore(text, author string, tags Tags) int {
	score := 100
	if author == "" || author == UnknownAuthor {
		score -= 30
	}
	if utf8.RuneCountInString(text) < 20 {
		score -= 20
	}
	if len(tags) == 0 {
		score -= 10
	}
	return max(0, score)
}

// WordCount counts whitespace separated tokens
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Tags is a list of free-text labels. It is stored comma joined.
type Tags []string

// ParseTags splits comma joined tag text, dropping empty entries
func ParseTags(s string) Tags {
	var tags Tags
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (t Tags) String() string {
	return strings.Join(t, ", ")
}

// Price keeps the scraped price text and, when it could be read, the amount
// and currency. Parsed is false for the unparsed variant.
type Price struct {
	Raw      string
	Amount   float64
	Currency string
	Parsed   bool
}

const PriceNotAvailable = "N/A"

var (
	priceRegex   = regexp.MustCompile(`^\s*([$€£¥]|[A-Z]{3})?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*([$€£¥]|[A-Z]{3})?\s*$`)
	currencySyms = map[string]string{
		"$": "USD",
		"€": "EUR",
		"£": "GBP",
		"¥": "JPY",
	}
)

// ParsePrice reads strings like "$29.99", "29.99 EUR" or "1,299.00". Anything
// else comes back unparsed with Raw preserved.
func ParsePrice(raw string) Price {
	p := Price{Raw: strings.TrimSpace(raw)}
	m := priceRegex.FindStringSubmatch(p.Raw)
	if m == nil {
		return p
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return p
	}

	cur := m[1]
	if cur == "" {
		cur = m[3]
	}
	if iso, ok := currencySyms[cur]; ok {
		cur = iso
	}

	p.Amount = amount
	p.Currency = cur
	p.Parsed = true
	return p
}

func (p Price) String() string {
	if p.Raw == "" {
		return PriceNotAvailable
	}
	return p.Raw
}
