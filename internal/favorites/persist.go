package favorites

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrCorrupt reports persisted favorites that could not be decoded.
var ErrCorrupt = errors.New("favorites data is corrupt")

// Persister loads and saves whole favorites sets.
type Persister interface {
	Load(ctx context.Context) (Set, error)
	Save(ctx context.Context, s Set) error
	Close() error
}

// JSONFile stores favorites as a JSON array of keys in a single file.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load returns an empty set for a missing or blank file.
func (f *JSONFile) Load(ctx context.Context) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return Set{}, fmt.Errorf("failed to read favorites: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Set{}, nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return Set{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.Path, err)
	}
	return NewSet(keys...), nil
}

// Save replaces the file atomically with the keys of s.
func (f *JSONFile) Save(ctx context.Context, s Set) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(s.Keys())
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".favorites-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("failed to replace favorites file: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }

// SQLite stores favorites in a single-table database file.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS favorites (key TEXT PRIMARY KEY)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create favorites table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) (Set, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM favorites`)
	if err != nil {
		return Set{}, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return Set{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return Set{}, fmt.Errorf("failed to read favorites: %w", err)
	}
	return NewSet(keys...), nil
}

// Save replaces the stored set in one transaction.
func (s *SQLite) Save(ctx context.Context, set Set) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO favorites (key) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, k := range set.Keys() {
		if _, err = stmt.ExecContext(ctx, k); err != nil {
			return fmt.Errorf("failed to insert favorite: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit favorites: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
