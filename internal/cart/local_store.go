package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// LocalSlotKey is the slot holding the anonymous cart.
const LocalSlotKey = "marketplace-cart"

const localSchema = `
CREATE TABLE IF NOT EXISTS local_slots (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// LocalStore keeps the anonymous cart in a device-local SQLite file.
type LocalStore struct {
	db     *sqlx.DB
	key    string
	logger *log.Logger
}

func OpenLocalStore(path string, logger *log.Logger) (*LocalStore, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local cart db: %w", err)
	}
	s, err := NewLocalStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewLocalStore(db *sqlx.DB, logger *log.Logger) (*LocalStore, error) {
	if _, err := db.Exec(localSchema); err != nil {
		return nil, fmt.Errorf("create local slot table: %w", err)
	}
	return &LocalStore{db: db, key: LocalSlotKey, logger: logger}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Load returns the stored lines. A missing or unreadable slot is an empty cart.
func (s *LocalStore) Load(ctx context.Context) ([]Line, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM local_slots WHERE key = ?`, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return []Line{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local slot: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Printf("local cart slot is corrupt, starting empty: %v", err)
		return []Line{}, nil
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

// Save overwrites the slot with lines.
func (s *LocalStore) Save(ctx context.Context, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode local cart: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO local_slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.key, string(raw))
	if err != nil {
		return fmt.Errorf("write local slot: %w", err)
	}
	return nil
}

func (s *LocalStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_slots WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("delete local slot: %w", err)
	}
	return nil
}
