package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/scrape/internal/types"
)

const (
	minContentParagraph = 5
	minListItem         = 3
	listItemLimit       = 20
)

// GeneralContent collects paragraphs, then headings, then the first 20 list
// items of a page.
func GeneralContent(doc *goquery.Document, sourceURL string) []types.Item {
	var items []types.Item
	add := func(cat types.Category, t string) {
		items = append(items, types.Item{Category: cat, Text: t, SourceURL: sourceURL})
	}

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := text(p); runeLen(t) > minContentParagraph {
			add(types.CategoryParagraph, t)
		}
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if t := text(h); t != "" {
			add(types.CategoryHeading, t)
		}
	})

	first(doc.Find("li"), listItemLimit, func(li *goquery.Selection) {
		if t := text(li); runeLen(t) > minListItem {
			add(types.CategoryListItem, t)
		}
	})

	return items
}
