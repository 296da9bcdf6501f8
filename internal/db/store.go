// Package db persists normalized study modules. It is the reference
// implementation of the external state-holder: the core packages never
// touch it, the CLI hands them values read from here and writes back
// what they return. Documents are stored in the interchange JSON shape,
// one row per module.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"quizsrs/internal/models"
)

// ErrModuleNotFound is returned when the requested module id has no row.
var ErrModuleNotFound = errors.New("module not found")

// Store is a SQLite-backed module store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS modules (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	doc        TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// Open opens (creating if needed) the database at path and applies the
// schema and pragmas.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqlDB.Exec(stmt); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{
		db:  sqlDB,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// ModuleInfo is one row of the module listing.
type ModuleInfo struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// SaveModule upserts the module document and returns its storage id. An
// empty id assigns a fresh one.
func (s *Store) SaveModule(id string, m models.Module) (string, error) {
	if id == "" {
		id = shortID(8)
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode module: %w", err)
	}
	now := s.now()
	_, err = s.db.Exec(`
		INSERT INTO modules (id, name, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, doc = excluded.doc, updated_at = excluded.updated_at`,
		id, m.Name, string(doc), now, now)
	if err != nil {
		return "", fmt.Errorf("save module %q: %w", id, err)
	}
	return id, nil
}

// GetModule loads one module document by storage id.
func (s *Store) GetModule(id string) (models.Module, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM modules WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Module{}, fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}
	if err != nil {
		return models.Module{}, fmt.Errorf("load module %q: %w", id, err)
	}
	var m models.Module
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		log.Printf("module store: decode module %q: %v", id, err)
		return models.Module{}, fmt.Errorf("decode module %q: %w", id, err)
	}
	return m, nil
}

// ListModules returns id, name and update time for every stored module,
// most recently updated first.
func (s *Store) ListModules() ([]ModuleInfo, error) {
	rows, err := s.db.Query(`SELECT id, name, updated_at FROM modules ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()
	var out []ModuleInfo
	for rows.Next() {
		var info ModuleInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list modules: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteModule removes one module. Deleting a missing id returns
// ErrModuleNotFound.
func (s *Store) DeleteModule(id string) error {
	res, err := s.db.Exec(`DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete module %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}
	return nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
