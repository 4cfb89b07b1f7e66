package queue

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
)

// Target is one site a script visits
type Target struct {
	Name string
	URL  string
	Kind string
}

// Queue hands out targets in order and shows a spinner while one is being
// worked on
type Queue struct {
	items   []Target
	visited map[string]bool
	mu      sync.Mutex

	spinner *spinner.Spinner
	current string
	logger  *log.Logger
}

// New creates a queue whose spinner writes to w. A nil w disables the
// spinner.
func New(w io.Writer, logger *log.Logger) *Queue {
	q := &Queue{
		visited: make(map[string]bool),
		logger:  logger,
	}
	if w != nil {
		q.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	}
	return q
}

// Push adds a target unless its URL was already queued
func (q *Queue) Push(targets ...Target) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, t := range targets {
		if q.visited[t.URL] {
			continue
		}
		q.visited[t.URL] = true
		q.items = append(q.items, t)
	}
}

// Pop returns the next target and starts the spinner for it
func (q *Queue) Pop() (Target, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Target{}, false
	}
	t := q.items[0]
	q.items = q.items[1:]

	q.current = t.URL
	if q.spinner != nil {
		q.spinner.Suffix = fmt.Sprintf(" %s %s", t.Name, formatSpinnerMessage(t.URL))
		q.spinner.Start()
	}
	return t, true
}

// Done stops the spinner for a finished target
func (q *Queue) Done(t Target, items int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stop(fmt.Sprintf("✓ %s: %d items\n", t.Name, items))
	q.logger.Info("target done", "name", t.Name, "url", t.URL, "items", items)
}

// HandleError reports a failed target and moves on
func (q *Queue) HandleError(t Target, err error, errorMessage string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if errorMessage == "" {
		errorMessage = "Error"
	}
	q.stop(errorLine(t.Name, errorMessage))
	q.logger.Error(errorMessage, "name", t.Name, "url", t.URL, "err", err)
}

// errorLine is the spinner's final message for a failed target, the error
// part cut to 50 characters
func errorLine(name, errorMessage string) string {
	shortMsg := fmt.Sprintf("ERROR: %s", errorMessage)
	if r := []rune(shortMsg); len(r) > 50 {
		shortMsg = string(r[:47]) + "..."
	}
	return fmt.Sprintf("✗ %s: %s\n", name, shortMsg)
}

func (q *Queue) stop(final string) {
	q.current = ""
	if q.spinner == nil {
		return
	}
	q.spinner.FinalMSG = final
	q.spinner.Stop()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// formatSpinnerMessage keeps the host and the tail of long URLs
func formatSpinnerMessage(urlStr string) string {
	maxLen := 40
	if utf8.RuneCountInString(urlStr) <= maxLen {
		return urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "..." + tail(urlStr, maxLen)
	}
	path := u.Path
	if keep := maxLen - utf8.RuneCountInString(u.Host) - 3; utf8.RuneCountInString(path) > keep {
		if keep <= 0 {
			return u.Host
		}
		path = "..." + tail(path, keep)
	}
	return strings.TrimSuffix(u.Host+path, "/")
}

// tail returns the last n characters of s
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
