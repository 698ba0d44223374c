package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the state database at path and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if path == ":memory:" {
		// A pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection. The caller is responsible for the
// schema; used by tests.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for direct queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// --- Settings ---

func (s *SQLiteStore) setting(key string) (float64, error) {
	var v float64
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) setSetting(key string, value float64) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// Budget returns the monthly budget.
func (s *SQLiteStore) Budget() (float64, error) { return s.setting("budget") }

// SetBudget stores the monthly budget.
func (s *SQLiteStore) SetBudget(amount float64) error { return s.setSetting("budget", amount) }

// WaterLimit returns the monthly water limit in liters.
func (s *SQLiteStore) WaterLimit() (float64, error) { return s.setting("water_limit") }

// SetWaterLimit stores the monthly water limit.
func (s *SQLiteStore) SetWaterLimit(amount float64) error { return s.setSetting("water_limit", amount) }

// --- Manual ledger ---

// ManualEntries returns all ledger entries keyed by date.
func (s *SQLiteStore) ManualEntries() (map[string]ManualEntry, error) {
	rows, err := s.db.Query(`SELECT entry_date, total_liters, night_liters FROM manual_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]ManualEntry)
	for rows.Next() {
		var e ManualEntry
		if err := rows.Scan(&e.Date, &e.Total, &e.Night); err != nil {
			return nil, fmt.Errorf("failed to scan manual entry: %w", err)
		}
		entries[e.Date] = e
	}
	return entries, rows.Err()
}

// PutManualEntry inserts or replaces the entry for its date.
func (s *SQLiteStore) PutManualEntry(e ManualEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO manual_entries (entry_date, total_liters, night_liters, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(entry_date) DO UPDATE SET
		   total_liters = excluded.total_liters,
		   night_liters = excluded.night_liters,
		   updated_at = excluded.updated_at`,
		e.Date, e.Total, e.Night, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save manual entry: %w", err)
	}
	return nil
}

// DeleteManualEntry removes the entry for the date. Returns false when no
// entry existed.
func (s *SQLiteStore) DeleteManualEntry(date string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM manual_entries WHERE entry_date = ?`, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete manual entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Reports ---

// LatestReport returns the lines of the most recent report for the context,
// or nil when none has been saved yet.
func (s *SQLiteStore) LatestReport(context string) ([]string, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT lines FROM reports WHERE context = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		context,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest report: %w", err)
	}

	var lines []string
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("failed to decode report lines: %w", err)
	}
	return lines, nil
}

// SaveReport stores a new report for the context.
func (s *SQLiteStore) SaveReport(context string, lines []string) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode report lines: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO reports (id, context, lines, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), context, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// --- Tip history ---

// RecentTips returns the recently used tip IDs for the context, most recent
// first.
func (s *SQLiteStore) RecentTips(context string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT tip_id FROM tip_history WHERE context = ? ORDER BY position`,
		context,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tip history: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetRecentTips replaces the tip history for the context.
func (s *SQLiteStore) SetRecentTips(context string, tipIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tip history update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM tip_history WHERE context = ?`, context); err != nil {
		return fmt.Errorf("failed to clear tip history: %w", err)
	}
	for i, id := range tipIDs {
		if _, err := tx.Exec(
			`INSERT INTO tip_history (context, position, tip_id) VALUES (?, ?, ?)`,
			context, i, id,
		); err != nil {
			return fmt.Errorf("failed to record tip: %w", err)
		}
	}
	return tx.Commit()
}
