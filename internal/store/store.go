package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const schemaVersion = 1

const (
	TableQuotes   = "quotes"
	TableProducts = "products"
	TableContent  = "general_content"
	TableSessions = "scraping_sessions"
)

// Tables lists every exportable table in display order
var Tables = []string{TableQuotes, TableProducts, TableContent, TableSessions}

var ErrUnknownTable = errors.New("unknown table")

// NoSession is returned by StartSession when no row could be created
const NoSession int64 = 0

// Store persists scraped records to one SQLite file
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens (and creates if needed) the database at path and brings the
// schema up to date.
func Open(ctx context.Context, path string, logger *log.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// one writer at a time, see https://stackoverflow.com/questions/35804884
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db, logger: logger.WithPrefix("store")}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Debug("database ready", "path", path)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	s.logger.Info("schema applied", "from", version, "to", schemaVersion)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.DateTime), Valid: true}
}
