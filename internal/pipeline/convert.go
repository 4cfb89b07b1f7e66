package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/go-scripts/scrape/internal/extract"
	"github.com/go-scripts/scrape/internal/report"
	"github.com/go-scripts/scrape/internal/types"
)

const (
	variousAuthor = "Various"
	staticTag     = "inspirational"
	dynamicTag    = "dynamic"

	// dynamic paragraphs and headings longer than this are stored as quotes
	quoteMinLength = 30
)

// Batch groups records by the table they are saved to
type Batch struct {
	Quotes   []types.Quote
	Products []types.Product
	Content  []types.Content
}

func (b Batch) Counts() report.Counts {
	return report.Counts{
		Quotes:   len(b.Quotes),
		Products: len(b.Products),
		Content:  len(b.Content),
	}
}

func (b *Batch) Append(o Batch) {
	b.Quotes = append(b.Quotes, o.Quotes...)
	b.Products = append(b.Products, o.Products...)
	b.Content = append(b.Content, o.Content...)
}

func QuoteFromItem(it types.Item, scraper types.Scraper) types.Quote {
	return types.Quote{
		Text:      it.Text,
		Author:    it.Author,
		Tags:      it.Tags,
		Page:      it.Page,
		SourceURL: it.SourceURL,
		Scraper:   scraper,
	}
}

func ProductFromItem(it types.Item, scraper types.Scraper) types.Product {
	return types.Product{
		Name:        it.Name,
		Price:       it.Price,
		Description: it.Description,
		Category:    it.SiteName,
		SourceURL:   it.SourceURL,
		Scraper:     scraper,
		Available:   true,
	}
}

func ContentFromItem(it types.Item, scraper types.Scraper) types.Content {
	return types.Content{
		Type:      string(it.Category),
		Text:      it.Text,
		SourceURL: it.SourceURL,
		Length:    utf8.RuneCountInString(it.Text),
		WordCount: types.WordCount(it.Text),
		Scraper:   scraper,
	}
}

// FromItems sorts extracted items into tables by category
func FromItems(items []types.Item, scraper types.Scraper) Batch {
	var b Batch
	for _, it := range items {
		switch it.Category {
		case types.CategoryQuote:
			b.Quotes = append(b.Quotes, QuoteFromItem(it, scraper))
		case types.CategoryProduct:
			b.Products = append(b.Products, ProductFromItem(it, scraper))
		default:
			b.Content = append(b.Content, ContentFromItem(it, scraper))
		}
	}
	return b
}

// FromStaticPage turns the paragraphs of a static page into quotes by
// "Various" and its title into a page_title content record.
func FromStaticPage(page extract.PageData, sourceURL string) Batch {
	var b Batch
	for _, p := range page.Paragraphs {
		b.Quotes = append(b.Quotes, types.Quote{
			Text:      p,
			Author:    variousAuthor,
			Tags:      types.Tags{staticTag},
			Page:      1,
			SourceURL: sourceURL,
			Scraper:   types.ScraperStatic,
		})
	}
	if page.HasTitle {
		b.Content = append(b.Content, ContentFromItem(types.Item{
			Category:  types.CategoryPageTitle,
			Text:      page.Title,
			SourceURL: sourceURL,
		}, types.ScraperStatic))
	}
	return b
}

// FromDynamicItems keeps paragraphs and headings that look like quotes as
// quotes by "Various" and stores every other item as content.
func FromDynamicItems(items []types.Item) Batch {
	var b Batch
	for _, it := range items {
		switch it.Category {
		case types.CategoryParagraph, types.CategoryHeading:
			if looksLikeQuote(it.Text) {
				b.Quotes = append(b.Quotes, types.Quote{
					Text:      it.Text,
					Author:    variousAuthor,
					Tags:      types.Tags{dynamicTag},
					Page:      1,
					SourceURL: it.SourceURL,
					Scraper:   types.ScraperDynamic,
				})
				continue
			}
			b.Content = append(b.Content, ContentFromItem(it, types.ScraperDynamic))
		case types.CategoryProduct:
			b.Products = append(b.Products, ProductFromItem(it, types.ScraperDynamic))
		case types.CategoryQuote:
			b.Quotes = append(b.Quotes, QuoteFromItem(it, types.ScraperDynamic))
		default:
			b.Content = append(b.Content, ContentFromItem(it, types.ScraperDynamic))
		}
	}
	return b
}

func looksLikeQuote(s string) bool {
	return strings.Contains(strings.ToLower(s), "quote") || utf8.RuneCountInString(s) > quoteMinLength
}
