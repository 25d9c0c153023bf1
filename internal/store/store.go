package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

type Store struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

var (
	ErrBadName  = fmt.Errorf("bad name for store")
	ErrNotFound = fmt.Errorf("value not found")
)

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isLetters(s string) bool {
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return s != ""
}

// Open connects to the sqlite database at path and prepares a store table
// called name.
func Open(path, name string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite db: %w", err)
	}
	s, err := New(db, name)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a new [Store] instance. name may only contain upper- or
// lowercase Latin letters since it is used as the table name.
func New(db *sql.DB, name string) (*Store, error) {
	if !isLetters(name) {
		return nil, ErrBadName
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + name + ` (
	key			TEXT PRIMARY KEY,
	value		TEXT NOT NULL,
	saved_at	TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		return nil, err
	}
	s := &Store{name: name, db: db}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a value from the store. If key is not present, [ErrNotFound]
// is returned.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+s.name+` WHERE key = ?;`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Set inserts a new key-value pair or updates an existing one.
func (s *Store) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO `+s.name+` (key, value, saved_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key)
DO UPDATE SET value=excluded.value, saved_at=excluded.saved_at;`,
		key, value)
	return err
}

// Delete deletes key from store without checking if it existed.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.name+` WHERE key = ?;`, key)
	return err
}

func (s *Store) Count(ctx context.Context) (count int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.name+`;`).Scan(&count)
	return
}

func (s *Store) GetAllKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM `+s.name+`;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Slot exposes one key of the store as a save slot.
func (s *Store) Slot(key string) game.Slot {
	return slot{store: s, key: key}
}

type slot struct {
	store *Store
	key   string
}

func (sl slot) ReadLines(ctx context.Context) ([]string, error) {
	v, err := sl.store.Get(ctx, sl.key)
	if errors.Is(err, ErrNotFound) {
		return nil, game.ErrNoSave
	}
	if err != nil {
		return nil, err
	}
	return savefile.Split(v), nil
}

func (sl slot) WriteLines(ctx context.Context, lines []string) error {
	return sl.store.Set(ctx, sl.key, savefile.Join(lines))
}

func (sl slot) Clear(ctx context.Context) error {
	return sl.store.Delete(ctx, sl.key)
}
