package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/scrape/internal/types"
)

const (
	nameSelector  = "h1, h2, h3, h4, h5, h6, .title, .name"
	priceSelector = ".price, .cost, [class*=price]"
	descSelector  = "p, .description, .desc"
)

const notAvailable = "N/A"

var productClassWords = []string{"product", "item", "card"}

func isProductCard(s *goquery.Selection) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	class = strings.ToLower(class)
	for _, w := range productClassWords {
		if strings.Contains(class, w) {
			return true
		}
	}
	return false
}

func fieldOr(s *goquery.Selection, selector string) string {
	el := s.Find(selector).First()
	if el.Length() == 0 {
		return notAvailable
	}
	return text(el)
}

// Products reads up to limit product cards: any div or article whose class
// mentions product, item or card. Missing fields read "N/A".
func Products(doc *goquery.Document, limit int, sourceURL string) []types.Item {
	cards := doc.Find("div, article").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isProductCard(s)
	})

	var items []types.Item
	first(cards, limit, func(card *goquery.Selection) {
		items = append(items, types.Item{
			Category:    types.CategoryProduct,
			Name:        fieldOr(card, nameSelector),
			Price:       types.ParsePrice(fieldOr(card, priceSelector)),
			Description: fieldOr(card, descSelector),
			SourceURL:   sourceURL,
		})
	})
	return items
}
