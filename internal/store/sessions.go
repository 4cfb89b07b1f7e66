package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-scripts/scrape/internal/types"
)

// StartSession opens a "running" session row and returns its id
func (s *Store) StartSession(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scraping_sessions (start_time, status) VALUES (datetime('now'), ?)`,
		types.SessionRunning,
	)
	if err != nil {
		s.logger.Error("failed to start session", "err", err)
		return NoSession, fmt.Errorf("start session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		s.logger.Error("failed to read session id", "err", err)
		return NoSession, fmt.Errorf("start session: %w", err)
	}
	s.logger.Info("session started", "session", id)
	return id, nil
}

// EndSession marks a session completed. Calling it twice updates the row
// again with the later values.
func (s *Store) EndSession(ctx context.Context, id int64, totalRecords int, websites string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scraping_sessions
		 SET end_time = datetime('now'), status = ?, total_records = ?, websites_scraped = ?
		 WHERE session_id = ?`,
		types.SessionCompleted, totalRecords, websites, id,
	)
	if err != nil {
		s.logger.Error("failed to end session", "session", id, "err", err)
		return fmt.Errorf("end session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Warn("no session to end", "session", id)
	}
	s.logger.Info("session completed", "session", id, "records", totalRecords)
	return nil
}

// Session loads one session row
func (s *Store) Session(ctx context.Context, id int64) (types.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, start_time, end_time, total_records, status, websites_scraped
		 FROM scraping_sessions WHERE session_id = ?`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, fmt.Errorf("session %d: %w", id, err)
	}
	if err != nil {
		s.logger.Error("failed to load session", "session", id, "err", err)
		return types.Session{}, fmt.Errorf("session %d: %w", id, err)
	}
	return sess, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (types.Session, error) {
	var (
		sess       types.Session
		start, end sql.NullString
	)
	err := row.Scan(&sess.ID, &start, &end, &sess.TotalRecords, &sess.Status, &sess.Websites)
	if err != nil {
		return types.Session{}, err
	}
	sess.StartTime = parseTime(start.String)
	if end.Valid {
		t := parseTime(end.String)
		sess.EndTime = &t
	}
	return sess, nil
}
