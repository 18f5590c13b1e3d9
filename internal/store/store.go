// Package store persists extraction and summary artifacts per page context,
// plus an append-only list of saved summaries for later comparison.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Record is the latest artifact pair for one page context.
type Record struct {
	ContextID  string
	SourceKind string
	URL        string
	Summary    string
	Status     string
	UpdatedAt  time.Time
}

// Saved is one entry in the append-only saved-summaries list.
type Saved struct {
	ID        int64
	URL       string
	Title     string
	Summary   string
	CreatedAt time.Time
}

// ErrNotFound is returned when no record exists for a context id.
var ErrNotFound = errors.New("store: not found")

// Store is a sqlite-backed key-value persistence layer.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS latest (
	context_id  TEXT PRIMARY KEY,
	source_kind TEXT NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS saved (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	url        TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	summary    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveLatest upserts the most recent artifact pair for a page context.
func (s *Store) SaveLatest(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.ContextID) == "" {
		return errors.New("store: empty context id")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO latest (context_id, source_kind, url, summary, status, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(context_id) DO UPDATE SET
	source_kind = excluded.source_kind,
	url         = excluded.url,
	summary     = excluded.summary,
	status      = excluded.status,
	updated_at  = excluded.updated_at`,
		rec.ContextID, rec.SourceKind, rec.URL, rec.Summary, rec.Status, rec.UpdatedAt)
	return err
}

// Latest returns the most recent artifact pair for a page context.
func (s *Store) Latest(ctx context.Context, contextID string) (Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx, `
SELECT context_id, source_kind, url, summary, status, updated_at
FROM latest WHERE context_id = ?`, contextID).
		Scan(&rec.ContextID, &rec.SourceKind, &rec.URL, &rec.Summary, &rec.Status, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// AppendSaved adds a summary to the append-only list and returns its id.
func (s *Store) AppendSaved(ctx context.Context, url, title, summary string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO saved (url, title, summary, created_at) VALUES (?, ?, ?, ?)`,
		url, title, summary, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSaved returns all saved summaries, newest first.
func (s *Store) ListSaved(ctx context.Context) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, url, title, summary, created_at FROM saved ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Saved
	for rows.Next() {
		var sv Saved
		if err := rows.Scan(&sv.ID, &sv.URL, &sv.Title, &sv.Summary, &sv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// Compare performs a flat line match between two summaries: lines present in
// b but not a come back as added, lines present in a but not b as removed.
// This is deliberately not a semantic diff.
func Compare(a, b string) (added, removed []string) {
	aset := lineSet(a)
	bset := lineSet(b)
	for _, line := range lines(b) {
		if _, ok := aset[line]; !ok {
			added = append(added, line)
		}
	}
	for _, line := range lines(a) {
		if _, ok := bset[line]; !ok {
			removed = append(removed, line)
		}
	}
	return added, removed
}

func lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func lineSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, line := range lines(s) {
		set[line] = struct{}{}
	}
	return set
}
