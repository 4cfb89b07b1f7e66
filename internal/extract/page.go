package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/scrape/internal/types"
)

const (
	linkTextLimit      = 50
	paragraphTextLimit = 200
	minParagraphLength = 10
)

type PageOptions struct {
	Links      int
	Paragraphs int
}

type Link struct {
	Text string
	Href string
}

func (l Link) String() string {
	return fmt.Sprintf("%s -> %s", l.Text, l.Href)
}

// PageData is the overview of one static page
type PageData struct {
	Title      string
	HasTitle   bool
	Links      []Link
	Paragraphs []string
}

// Page takes the title, the first Links anchors with an href and whichever
// of the first Paragraphs paragraphs are longer than 10 characters.
func Page(doc *goquery.Document, opts PageOptions) PageData {
	var data PageData

	if t := doc.Find("title").First(); t.Length() > 0 {
		data.Title = text(t)
		data.HasTitle = true
	}

	first(doc.Find("a[href]"), opts.Links, func(a *goquery.Selection) {
		href, _ := a.Attr("href")
		data.Links = append(data.Links, Link{
			Text: Truncate(text(a), linkTextLimit),
			Href: href,
		})
	})

	first(doc.Find("p"), opts.Paragraphs, func(p *goquery.Selection) {
		t := text(p)
		if runeLen(t) > minParagraphLength {
			data.Paragraphs = append(data.Paragraphs, Truncate(t, paragraphTextLimit))
		}
	})

	return data
}

// RawRows flattens the page into `Data Type`,`Content` rows
func (d PageData) RawRows() []types.RawRow {
	var rows []types.RawRow
	if d.HasTitle {
		rows = append(rows, types.RawRow{DataType: "Page Title", Content: d.Title})
	}
	for _, l := range d.Links {
		rows = append(rows, types.RawRow{DataType: "Link", Content: l.String()})
	}
	for i, p := range d.Paragraphs {
		rows = append(rows, types.RawRow{DataType: fmt.Sprintf("Paragraph %d", i+1), Content: p})
	}
	return rows
}

// Headings returns the non-empty texts among the first limit tag elements
func Headings(doc *goquery.Document, tag string, limit int) []string {
	var out []string
	first(doc.Find(tag), limit, func(h *goquery.Selection) {
		if t := text(h); t != "" {
			out = append(out, t)
		}
	})
	return out
}
