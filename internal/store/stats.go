package store

import (
	"context"
	"fmt"

	"github.com/go-scripts/scrape/internal/types"
)

type AuthorCount struct {
	Author string
	Quotes int
}

// Stats summarizes what the database holds
type Stats struct {
	Quotes         int
	Products       int
	Content        int
	Sessions       int
	TopAuthors     []AuthorCount
	RecentSessions []types.Session
}

// Stats counts rows per table and lists the top 5 authors and the 3 most
// recent sessions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	counts := []struct {
		table string
		dst   *int
	}{
		{TableQuotes, &st.Quotes},
		{TableProducts, &st.Products},
		{TableContent, &st.Content},
		{TableSessions, &st.Sessions},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			s.logger.Error("failed to count", "table", c.table, "err", err)
			return Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	var err error
	if st.TopAuthors, err = s.topAuthors(ctx, 5); err != nil {
		s.logger.Error("failed to rank authors", "err", err)
		return Stats{}, fmt.Errorf("top authors: %w", err)
	}
	if st.RecentSessions, err = s.recentSessions(ctx, 3); err != nil {
		s.logger.Error("failed to list sessions", "err", err)
		return Stats{}, fmt.Errorf("recent sessions: %w", err)
	}
	return st, nil
}

// the pool holds a single connection, so rows must be closed before the
// next query runs
func (s *Store) topAuthors(ctx context.Context, limit int) ([]AuthorCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT author, COUNT(*) AS n FROM quotes GROUP BY author ORDER BY n DESC, author LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuthorCount
	for rows.Next() {
		var a AuthorCount
		if err := rows.Scan(&a.Author, &a.Quotes); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) recentSessions(ctx context.Context, limit int) ([]types.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, start_time, end_time, total_records, status, websites_scraped
		 FROM scraping_sessions ORDER BY start_time DESC, session_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
