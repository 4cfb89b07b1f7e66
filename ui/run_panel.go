package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SiteResult is the outcome of scraping one target
type SiteResult struct {
	Name  string
	URL   string
	Items int
	Err   error
}

// RunStats holds the statistics of one scraping run
type RunStats struct {
	Title     string
	SessionID int64
	StartTime time.Time
	EndTime   time.Time
	Saved     int
	Output    string
	Sites     []SiteResult
}

// RunPanel renders the end-of-run summary box
type RunPanel struct {
	stats      RunStats
	width      int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewRunPanel() *RunPanel {
	return &RunPanel{
		width: 60,
		style: borderStyle.
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (p *RunPanel) SetWidth(width int) {
	p.width = width
}

// UpdateStats replaces the statistics
func (p *RunPanel) UpdateStats(stats RunStats) {
	p.stats = stats
}

func (p *RunPanel) Stats() RunStats {
	return p.stats
}

// AddSite records the result of one target
func (p *RunPanel) AddSite(r SiteResult) {
	p.stats.Sites = append(p.stats.Sites, r)
}

func (p *RunPanel) View() string {
	succeeded, items := 0, 0
	for _, s := range p.stats.Sites {
		if s.Err == nil {
			succeeded++
		}
		items += s.Items
	}

	rows := []struct {
		label string
		value string
	}{
		{"Sites", fmt.Sprintf("%d/%d succeeded", succeeded, len(p.stats.Sites))},
		{"Items", fmt.Sprintf("%d", items)},
	}
	if p.stats.SessionID > 0 {
		rows = append(rows, struct{ label, value string }{"Session", fmt.Sprintf("%d", p.stats.SessionID)})
	}
	if p.stats.Saved > 0 {
		rows = append(rows, struct{ label, value string }{"Saved", fmt.Sprintf("%d records", p.stats.Saved)})
	}
	if p.stats.Output != "" {
		rows = append(rows, struct{ label, value string }{"Output", p.stats.Output})
	}
	rows = append(rows, struct{ label, value string }{"Elapsed", p.formatElapsedTime()})

	title := p.stats.Title
	if title == "" {
		title = "Scraping Run"
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(title) + "\n\n")
	for _, r := range rows {
		content.WriteString(fmt.Sprintf("%-10s %s\n",
			p.labelStyle.Render(r.label+":"),
			p.valueStyle.Render(r.value),
		))
	}

	if len(p.stats.Sites) > 0 {
		content.WriteString("\n")
		for _, s := range p.stats.Sites {
			if s.Err != nil {
				content.WriteString(errorStyle.Render(fmt.Sprintf("x %s: %v", s.Name, s.Err)) + "\n")
				continue
			}
			content.WriteString(infoStyle.Render(fmt.Sprintf("+ %s: %d items", s.Name, s.Items)) + "\n")
		}
	}

	return p.style.Width(p.width).Render(strings.TrimRight(content.String(), "\n"))
}

func (p *RunPanel) formatElapsedTime() string {
	if p.stats.StartTime.IsZero() {
		return "00:00:00"
	}
	end := p.stats.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	elapsed := end.Sub(p.stats.StartTime)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(elapsed.Hours()),
		int(elapsed.Minutes())%60,
		int(elapsed.Seconds())%60,
	)
}
