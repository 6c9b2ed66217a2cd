// Package nnid maps Nintendo Network IDs to stored avatar data.
package nnid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultDriver is the pure Go SQLite driver registered by this package.
const DefaultDriver = "sqlite"

var ErrNotFound = errors.New("nnid not found")

var normalizer = strings.NewReplacer("-", "", "_", "", ".", "")

// Normalize lowercases id and strips the separators users type
// inconsistently.
func Normalize(id string) string {
	return strings.ToLower(normalizer.Replace(id))
}

// Store looks up avatar data in the nnid_to_mii_data_map table.
type Store struct {
	db *sql.DB
}

// Open opens the database. An empty driver selects DefaultDriver.
func Open(driver, dsn string) (*Store, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the lookup table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS nnid_to_mii_data_map (
	normalized_nnid TEXT PRIMARY KEY,
	data BLOB NOT NULL
)`)
	return err
}

// Put stores data under the normalized form of id, replacing any row.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO nnid_to_mii_data_map (normalized_nnid, data) VALUES (?, ?)`,
		Normalize(id), data)
	return err
}

// Lookup returns the stored data for id.
func (s *Store) Lookup(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM nnid_to_mii_data_map WHERE normalized_nnid = ? LIMIT 1`,
		Normalize(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(data) == 0) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", id, err)
	}
	return data, nil
}
