package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
    book_id        TEXT PRIMARY KEY,
    book_title     TEXT NOT NULL DEFAULT '',
    original_title TEXT NOT NULL DEFAULT '',
    author         TEXT NOT NULL DEFAULT '',
    cover_url      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS highlights (
    id                TEXT PRIMARY KEY,
    book_id           TEXT NOT NULL,
    book_title        TEXT NOT NULL DEFAULT '',
    author            TEXT NOT NULL DEFAULT '',
    highlight_content TEXT NOT NULL DEFAULT '',
    note_content      TEXT NOT NULL DEFAULT '',
    location          TEXT NOT NULL DEFAULT '',
    date_added        TEXT NOT NULL DEFAULT '',
    date_added_raw    TEXT NOT NULL DEFAULT '',
    note_date_added   TEXT NOT NULL DEFAULT '',
    clip_index        INTEGER NOT NULL DEFAULT 0,
    deleted_at        TEXT NOT NULL DEFAULT ''
);
`

// SQLiteMedium persists the store document into a local SQLite database. The
// whole-document semantics of Medium are kept: Save rewrites both tables in
// one transaction, preserving the single-writer atomicity the file medium
// provides.
type SQLiteMedium struct {
	db *sqlx.DB
}

// OpenSQLiteMedium opens (or creates) the database file and ensures the
// schema exists.
func OpenSQLiteMedium(path string) (*SQLiteMedium, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open(%s) > %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec(schema) > %w", err)
	}
	return &SQLiteMedium{db: db}, nil
}

// Close releases the underlying database handle.
func (m *SQLiteMedium) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("db.Close() > %w", err)
	}
	return nil
}

// Load reads both tables back into a State, reporting ok=false for a
// freshly created empty database.
func (m *SQLiteMedium) Load() (State, bool, error) {
	var books []Book
	if err := m.db.Select(&books, "SELECT * FROM books ORDER BY book_id"); err != nil {
		return State{}, false, fmt.Errorf("db.Select(books) > %w", err)
	}
	var highlights []Highlight
	if err := m.db.Select(&highlights, "SELECT * FROM highlights ORDER BY clip_index, id"); err != nil {
		return State{}, false, fmt.Errorf("db.Select(highlights) > %w", err)
	}

	if len(books) == 0 && len(highlights) == 0 {
		return State{}, false, nil
	}

	state := NewState()
	for _, b := range books {
		state.Books[b.ID] = b
	}
	state.Highlights = highlights
	return state, true, nil
}

// Save rewrites both tables with the given state in a single transaction.
func (m *SQLiteMedium) Save(state State) error {
	tx, err := m.db.Beginx()
	if err != nil {
		return fmt.Errorf("db.Beginx() > %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM books"); err != nil {
		return fmt.Errorf("tx.Exec(delete books) > %w", err)
	}
	if _, err := tx.Exec("DELETE FROM highlights"); err != nil {
		return fmt.Errorf("tx.Exec(delete highlights) > %w", err)
	}

	for _, book := range state.Books {
		if _, err := tx.NamedExec(`INSERT INTO books
			(book_id, book_title, original_title, author, cover_url)
			VALUES (:book_id, :book_title, :original_title, :author, :cover_url)`, book); err != nil {
			return fmt.Errorf("tx.NamedExec(insert book) > %w", err)
		}
	}
	for _, h := range state.Highlights {
		if _, err := tx.NamedExec(`INSERT INTO highlights
			(id, book_id, book_title, author, highlight_content, note_content,
			 location, date_added, date_added_raw, note_date_added, clip_index, deleted_at)
			VALUES (:id, :book_id, :book_title, :author, :highlight_content, :note_content,
			 :location, :date_added, :date_added_raw, :note_date_added, :clip_index, :deleted_at)`, h); err != nil {
			return fmt.Errorf("tx.NamedExec(insert highlight) > %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}
