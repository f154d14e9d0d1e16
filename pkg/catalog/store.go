package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
    position  INTEGER PRIMARY KEY AUTOINCREMENT,
    id        TEXT    NOT NULL UNIQUE,
    title     TEXT    NOT NULL,
    focus     TEXT    NOT NULL DEFAULT ''
);
`

// ErrNotFound is returned when a catalog entry does not exist in the store.
var ErrNotFound = errors.New("catalog entry not found")

// SetupSchema creates the catalog tables if they do not exist.
func SetupSchema(db *sql.DB) error {
	_, err := db.Exec(catalogSchema)
	return err
}

// Store provides SQLite-backed persistence for catalog entries. Catalog
// order is insertion order: the position column is assigned on first insert
// and kept on update.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-open database. The caller owns the connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts an entry or updates its title and focus in place.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	if e.ID == "" || e.Title == "" {
		return fmt.Errorf("catalog entry must have an id and a title")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO catalog_entries (id, title, focus) VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET title = excluded.title, focus = excluded.focus
    `, e.ID, e.Title, e.Focus)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog entry %q: %w", e.ID, err)
	}
	return nil
}

// Get returns the entry with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	var e Entry
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, focus FROM catalog_entries WHERE id = ?", id,
	).Scan(&e.ID, &e.Title, &e.Focus)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query catalog entry %q: %w", id, err)
	}
	return e, nil
}

// Delete removes the entry with the given id. Deleting a missing entry
// returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM catalog_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog entry %q: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all entries in catalog order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, focus FROM catalog_entries ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err = rows.Scan(&e.ID, &e.Title, &e.Focus); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count catalog entries: %w", err)
	}
	return n, nil
}

// Import validates entries and upserts them all within one transaction, in
// order. New entries are appended after existing ones; entries that already
// exist keep their position and receive the new title and focus.
func (s *Store) Import(ctx context.Context, entries []Entry) error {
	if err := Validate(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin catalog import transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	for _, e := range entries {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO catalog_entries (id, title, focus) VALUES (?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET title = excluded.title, focus = excluded.focus
        `, e.ID, e.Title, e.Focus)
		if err != nil {
			return fmt.Errorf("failed to import catalog entry %q: %w", e.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog import: %w", err)
	}
	return nil
}
