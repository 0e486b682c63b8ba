package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/wburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite stores events in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ EventStore = (*SQLite)(nil)

// Open opens or creates the event database at the given path.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening event db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// List returns every stored event in insertion order.
func (s *SQLite) List(ctx context.Context) ([]model.UsageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_date, type, amount, created_at FROM events ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.UsageEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Get returns the event with the given id.
func (s *SQLite) Get(ctx context.Context, id string) (model.UsageEvent, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, event_date, type, amount, created_at FROM events WHERE id = ?", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UsageEvent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Insert stores a new event. The id must not already exist.
func (s *SQLite) Insert(ctx context.Context, e model.UsageEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE id = ?", e.ID).Scan(&n); err != nil {
		return fmt.Errorf("checking id: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO events (id, event_date, type, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		e.ID, formatTime(e.Date), string(e.Type), e.Amount, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return tx.Commit()
}

// Update replaces the date, type and amount of an existing event.
func (s *SQLite) Update(ctx context.Context, e model.UsageEvent) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE events SET event_date = ?, type = ?, amount = ? WHERE id = ?",
		formatTime(e.Date), string(e.Type), e.Amount, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return requireOneRow(res, e.ID)
}

// Delete removes the event with the given id.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (model.UsageEvent, error) {
	var (
		e                model.UsageEvent
		date, typ, added string
	)
	if err := sc.Scan(&e.ID, &date, &typ, &e.Amount, &added); err != nil {
		return e, err
	}
	e.Type = model.EventType(typ)

	var err error
	if e.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
		return e, fmt.Errorf("parsing date of %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, added); err != nil {
		return e, fmt.Errorf("parsing created_at of %s: %w", e.ID, err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
