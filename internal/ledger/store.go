package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"upright/internal/services"
)

// Record is one produced output for a channel. Records are append-only;
// (Channel, ContentID) is unique.
type Record struct {
	ID         int64
	Channel    string
	ContentID  string
	Title      string
	OutputPath string
	CreatedAt  time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	clock    func() time.Time
	location *time.Location

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option adjusts store construction.
type Option func(*Store)

// WithClock injects the time source used for day bucketing.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLocation sets the location in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.location = loc }
}

// Open initializes or connects to the history database and applies the schema.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:       db,
		path:     dbPath,
		clock:    time.Now,
		location: time.Local,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.location == nil {
		store.location = time.Local
	}

	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// LockChannel serializes the duplicate-check / count / append surface for one
// channel. Operations on different channels proceed independently.
func (s *Store) LockChannel(channel string) (unlock func()) {
	s.mu.Lock()
	lock, ok := s.locks[channel]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[channel] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// IsDuplicate reports whether the channel already produced this content.
func (s *Store) IsDuplicate(ctx context.Context, channel, contentID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM history_records WHERE channel = ? AND content_id = ?`,
		channel, contentID,
	).Scan(&count)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "ledger", "is-duplicate", "query history", err)
	}
	return count > 0, nil
}

// CountToday returns how many records the channel produced during the current
// day in the store's location.
func (s *Store) CountToday(ctx context.Context, channel string) (int, error) {
	now := s.clock().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM history_records WHERE channel = ? AND created_at >= ? AND created_at < ?`,
		channel, dayStart.Unix(), dayEnd.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "ledger", "count-today", "query history", err)
	}
	return count, nil
}

// Append records a produced output. Appending the same (channel, content id)
// twice is a no-op, so retried pipelines never double-count.
func (s *Store) Append(ctx context.Context, record Record) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO history_records (channel, content_id, title, output_path, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		record.Channel, record.ContentID, nullableString(record.Title),
		nullableString(record.OutputPath), createdAt.Unix(),
	)
	if err != nil {
		return services.Wrap(services.ErrTransient, "ledger", "append", "insert history record", err)
	}
	return nil
}

// Recent returns the channel's newest records, most recent first. A blank
// channel returns records across all channels.
func (s *Store) Recent(ctx context.Context, channel string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, channel, content_id, title, output_path, created_at
              FROM history_records`
	args := []any{}
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ledger", "recent", "query history", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows, s.location)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "ledger", "recent", "iterate history", err)
	}
	return records, nil
}

// Clear removes a channel's history, or everything when channel is blank.
func (s *Store) Clear(ctx context.Context, channel string) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if channel == "" {
		result, err = s.db.ExecContext(ctx, `DELETE FROM history_records`)
	} else {
		result, err = s.db.ExecContext(ctx, `DELETE FROM history_records WHERE channel = ?`, channel)
	}
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "ledger", "clear", "delete history", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "ledger", "clear", "count removed rows", err)
	}
	return removed, nil
}

func scanRecord(rows *sql.Rows, loc *time.Location) (Record, error) {
	var (
		record     Record
		title      sql.NullString
		outputPath sql.NullString
		createdAt  int64
	)
	if err := rows.Scan(&record.ID, &record.Channel, &record.ContentID, &title, &outputPath, &createdAt); err != nil {
		return Record{}, services.Wrap(services.ErrTransient, "ledger", "scan", "scan history record", err)
	}
	record.Title = title.String
	record.OutputPath = outputPath.String
	record.CreatedAt = time.Unix(createdAt, 0).In(loc)
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
