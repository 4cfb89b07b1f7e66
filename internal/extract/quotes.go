package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/scrape/internal/types"
)

// Quotes reads `div.quote` blocks. Blocks without a text or an author
// element are skipped.
func Quotes(doc *goquery.Document, page int, sourceURL string) []types.Item {
	var items []types.Item
	doc.Find("div.quote").Each(func(_ int, q *goquery.Selection) {
		textEl := q.Find("span.text").First()
		authorEl := q.Find("small.author").First()
		if textEl.Length() == 0 || authorEl.Length() == 0 {
			return
		}

		var tags types.Tags
		q.Find("a.tag").Each(func(_ int, tag *goquery.Selection) {
			tags = append(tags, tag.Text())
		})

		items = append(items, types.Item{
			Category:  types.CategoryQuote,
			Page:      page,
			Text:      text(textEl),
			Author:    text(authorEl),
			Tags:      tags,
			SourceURL: sourceURL,
		})
	})
	return items
}

// QuotesOrParagraphs falls back to the first limit paragraphs longer than
// 10 characters when the page has no quote markup.
func QuotesOrParagraphs(doc *goquery.Document, page int, sourceURL string, limit int) []types.Item {
	if items := Quotes(doc, page, sourceURL); len(items) > 0 {
		return items
	}

	var items []types.Item
	first(doc.Find("p"), limit, func(p *goquery.Selection) {
		t := text(p)
		if runeLen(t) <= minParagraphLength {
			return
		}
		items = append(items, types.Item{
			Category:  types.CategoryParagraph,
			Page:      page,
			Text:      t,
			SourceURL: sourceURL,
		})
	})
	return items
}
