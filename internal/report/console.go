package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/go-scripts/scrape/internal/clean"
	"github.com/go-scripts/scrape/internal/store"
)

// Counts is the number of records of each kind produced by one scraper
type Counts struct {
	Quotes   int
	Products int
	Content  int
}

func (c Counts) Total() int { return c.Quotes + c.Products + c.Content }

func (c Counts) Add(o Counts) Counts {
	return Counts{
		Quotes:   c.Quotes + o.Quotes,
		Products: c.Products + o.Products,
		Content:  c.Content + o.Content,
	}
}

// Run describes one combined pipeline run
type Run struct {
	SessionID int64
	Timestamp time.Time
	Static    Counts
	Dynamic   Counts
	Saved     Counts
	Sites     []string
	Errors    []string
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

// PrintAnalysis renders the per-category breakdown of a cleaned data set
func PrintAnalysis(w io.Writer, a clean.Analysis) {
	t := newTable(w, "Data Types")
	t.AppendHeader(table.Row{"Data Type", "Rows", "Avg Length", "Min", "Max", "Avg Words", "URL %"})
	for _, c := range a.Categories {
		t.AppendRow(table.Row{
			c.DataType,
			c.Count,
			fmt.Sprintf("%.2f", c.MeanLength),
			c.MinLength,
			c.MaxLength,
			fmt.Sprintf("%.2f", c.MeanWords),
			fmt.Sprintf("%.1f", c.URLRatio*100),
		})
	}
	t.AppendFooter(table.Row{"Total", a.Rows, fmt.Sprintf("%.2f", a.MeanLength), "", "", fmt.Sprintf("%.2f", a.MeanWords), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

// PrintSample renders the first n cleaned rows
func PrintSample(w io.Writer, rows []clean.Row, n int) {
	fmt.Fprintln(w, sampleTable(rows, n))
}

// PrintStats renders the database statistics
func PrintStats(w io.Writer, st store.Stats) {
	t := newTable(w, "Database Statistics")
	t.AppendHeader(table.Row{"Table", "Rows"})
	t.AppendRows([]table.Row{
		{"Total quotes", st.Quotes},
		{"Total products", st.Products},
		{"Total content", st.Content},
		{"Sessions", st.Sessions},
	})
	t.Render()

	if len(st.TopAuthors) > 0 {
		a := newTable(w, "Top Authors")
		a.AppendHeader(table.Row{"Author", "Quotes"})
		for _, ac := range st.TopAuthors {
			a.AppendRow(table.Row{ac.Author, ac.Quotes})
		}
		a.Render()
	}

	if len(st.RecentSessions) > 0 {
		s := newTable(w, "Recent Sessions")
		s.AppendHeader(table.Row{"ID", "Started", "Ended", "Records", "Status", "Websites"})
		for _, sess := range st.RecentSessions {
			ended := "-"
			if sess.EndTime != nil {
				ended = sess.EndTime.Format(time.DateTime)
			}
			s.AppendRow(table.Row{
				sess.ID,
				sess.StartTime.Format(time.DateTime),
				ended,
				sess.TotalRecords,
				sess.Status,
				sess.Websites,
			})
		}
		s.Render()
	}
}

// PrintRun renders the combined pipeline report
func PrintRun(w io.Writer, r Run) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, "COMBINED PIPELINE REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))
	if r.SessionID > 0 {
		fmt.Fprintf(w, "Session: %d\n", r.SessionID)
	}

	t := newTable(w, "")
	t.AppendHeader(table.Row{"Scraper", "Quotes", "Content", "Products"})
	t.AppendRows([]table.Row{
		{"static", r.Static.Quotes, r.Static.Content, r.Static.Products},
		{"dynamic", r.Dynamic.Quotes, r.Dynamic.Content, r.Dynamic.Products},
	})
	t.AppendFooter(table.Row{"saved", r.Saved.Quotes, r.Saved.Content, r.Saved.Products})
	t.Render()

	if len(r.Sites) > 0 {
		fmt.Fprintf(w, "Websites: %s\n", strings.Join(r.Sites, ", "))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "Error: %s\n", e)
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// PrintTitles renders a numbered list of titles
func PrintTitles(w io.Writer, titles []string) {
	t := newTable(w, "Titles")
	t.AppendHeader(table.Row{"#", "Title"})
	for i, title := range titles {
		t.AppendRow(table.Row{i + 1, title})
	}
	t.Render()
}
