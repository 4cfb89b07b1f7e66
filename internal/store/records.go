package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-scripts/scrape/internal/types"
)

const (
	defaultProductName = "Unknown Product"
	defaultCategory    = "General"
	defaultContentType = "unknown"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func scraperOf(s types.Scraper) string {
	return orDefault(string(s), string(types.ScraperStatic))
}

// withTx runs fn in one transaction. The whole call is rolled back when any
// insert fails.
func (s *Store) withTx(ctx context.Context, what string, fn func(tx *sql.Tx) (int, error)) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin", "what", what, "err", err)
		return 0, fmt.Errorf("save %s: %w", what, err)
	}
	defer tx.Rollback()

	n, err := fn(tx)
	if err != nil {
		s.logger.Error("failed to save", "what", what, "err", err)
		return 0, fmt.Errorf("save %s: %w", what, err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit", "what", what, "err", err)
		return 0, fmt.Errorf("save %s: %w", what, err)
	}

	s.logger.Info("saved records", "what", what, "count", n)
	return n, nil
}

// SaveQuotes inserts quotes, scoring each one
func (s *Store) SaveQuotes(ctx context.Context, quotes []types.Quote) (int, error) {
	return s.withTx(ctx, TableQuotes, func(tx *sql.Tx) (int, error) {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO quotes
			(quote_text, author, tags, page_number, source_url, scraper, scrape_timestamp, data_quality_score)
			VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()

		for _, q := range quotes {
			author := orDefault(q.Author, types.UnknownAuthor)
			page := q.Page
			if page == 0 {
				page = 1
			}
			_, err := stmt.ExecContext(ctx,
				q.Text, author, q.Tags.String(), page, q.SourceURL, scraperOf(q.Scraper),
				nullTime(q.Timestamp), types.QualityScore(q.Text, author, q.Tags),
			)
			if err != nil {
				return 0, err
			}
		}
		return len(quotes), nil
	})
}

// SaveProducts inserts product cards. The raw price is always kept and the
// parsed amount only when it could be read.
func (s *Store) SaveProducts(ctx context.Context, products []types.Product) (int, error) {
	return s.withTx(ctx, TableProducts, func(tx *sql.Tx) (int, error) {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO products
			(product_name, price, price_amount, price_currency, description, category, source_url, scraper, scrape_timestamp, is_available)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()

		for _, p := range products {
			amount := sql.NullFloat64{Float64: p.Price.Amount, Valid: p.Price.Parsed}
			currency := sql.NullString{String: p.Price.Currency, Valid: p.Price.Parsed && p.Price.Currency != ""}
			_, err := stmt.ExecContext(ctx,
				orDefault(p.Name, defaultProductName), p.Price.String(), amount, currency,
				p.Description, orDefault(p.Category, defaultCategory), p.SourceURL,
				scraperOf(p.Scraper), nullTime(p.Timestamp), p.Available,
			)
			if err != nil {
				return 0, err
			}
		}
		return len(products), nil
	})
}

// SaveContent inserts generic content, computing length and word count
func (s *Store) SaveContent(ctx context.Context, content []types.Content) (int, error) {
	return s.withTx(ctx, TableContent, func(tx *sql.Tx) (int, error) {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO general_content
			(content_type, content_text, source_url, content_length, word_count, scraper, scrape_timestamp)
			VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()

		for _, c := range content {
			_, err := stmt.ExecContext(ctx,
				orDefault(c.Type, defaultContentType), c.Text, c.SourceURL,
				len([]rune(c.Text)), types.WordCount(c.Text),
				scraperOf(c.Scraper), nullTime(c.Timestamp),
			)
			if err != nil {
				return 0, err
			}
		}
		return len(content), nil
	})
}

// Quotes returns every stored quote, oldest first
func (s *Store) Quotes(ctx context.Context) ([]types.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, quote_text, author, tags, page_number, source_url, scraper, scrape_timestamp, data_quality_score
		FROM quotes ORDER BY id`)
	if err != nil {
		s.logger.Error("failed to query quotes", "err", err)
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var out []types.Quote
	for rows.Next() {
		var (
			q       types.Quote
			tags    string
			scraper string
			ts      sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Author, &tags, &q.Page, &q.SourceURL, &scraper, &ts, &q.QualityScore); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Tags = types.ParseTags(tags)
		q.Scraper = types.Scraper(scraper)
		q.Timestamp = parseTime(ts.String)
		out = append(out, q)
	}
	return out, rows.Err()
}
