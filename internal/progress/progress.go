package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// Tracker renders a single progress bar for a fixed number of steps
type Tracker struct {
	bar   progress.Model
	w     io.Writer
	total int
	done  int
	mu    sync.Mutex
}

// New creates a Tracker drawing to w. A nil w only counts.
func New(w io.Writer, total int) *Tracker {
	return &Tracker{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		w:     w,
		total: total,
	}
}

// Advance records one finished step and redraws the bar
func (t *Tracker) Advance(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done++
	if t.w == nil || t.total <= 0 {
		return
	}
	fmt.Fprintf(t.w, "\rProgress: %s %d/%d %s", t.bar.ViewAs(t.percent()), t.done, t.total, label)
}

// Finish ends the bar line
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w != nil && t.done > 0 {
		fmt.Fprintln(t.w)
	}
}

// Percent is the finished share, between 0 and 1
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent()
}

func (t *Tracker) percent() float64 {
	if t.total <= 0 {
		return 0
	}
	return min(1, float64(t.done)/float64(t.total))
}
