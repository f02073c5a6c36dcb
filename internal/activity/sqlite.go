package activity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/crate/internal/shared"
)

// SQLite is a [Recorder] backed by the activity table.
type SQLite struct {
	db  *sql.DB
	max int
}

// NewSQLite creates a [SQLite] recorder over an already migrated database.
func NewSQLite(db *sql.DB, max int) *SQLite {
	return &SQLite{db: db, max: capOrDefault(max)}
}

// Record inserts e and deletes the client's rows beyond the cap in the same transaction.
func (s *SQLite) Record(ctx context.Context, client string, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO activity (id, client, method, route, status, recorded_at) VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert, shared.GenerateID(), client, e.Method, e.Route, e.Status, e.At.UTC()); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	trim := `
		DELETE FROM activity
		WHERE client = ? AND seq NOT IN (
			SELECT seq FROM activity WHERE client = ? ORDER BY seq DESC LIMIT ?
		)
	`
	if _, err := tx.ExecContext(ctx, trim, client, client, s.max); err != nil {
		return fmt.Errorf("failed to trim activity: %w", err)
	}

	return tx.Commit()
}

func (s *SQLite) Recent(ctx context.Context, client string, n int) ([]Entry, error) {
	query := `
		SELECT method, route, status, recorded_at
		FROM activity
		WHERE client = ?
		ORDER BY seq DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, client, limit(n, s.max))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Method, &e.Route, &e.Status, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
