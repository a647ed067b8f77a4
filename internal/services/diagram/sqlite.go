package diagram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists documents in a SQLite file. A single connection
// serializes transactions, which keeps read-modify-write of savedUML atomic.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			uid       TEXT PRIMARY KEY,
			saved_uml TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS uml (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL DEFAULT '',
			privacy     TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			timestamp   INTEGER NOT NULL DEFAULT 0,
			diagram     TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

func (s *SQLiteStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&sqliteTx{ctx: ctx, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *sqliteTx) GetUser(uid string) (*User, error) {
	var raw string
	err := t.tx.QueryRowContext(t.ctx, `SELECT saved_uml FROM users WHERE uid = ?`, uid).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u := &User{}
	if err := json.Unmarshal([]byte(raw), &u.SavedUML); err != nil {
		return nil, fmt.Errorf("decoding savedUML of %s: %w", uid, err)
	}
	return u, nil
}

func (t *sqliteTx) SetUser(uid string, user *User) error {
	saved := user.SavedUML
	if saved == nil {
		saved = []string{}
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(t.ctx,
		`INSERT INTO users (uid, saved_uml) VALUES (?, ?)
		 ON CONFLICT(uid) DO UPDATE SET saved_uml = excluded.saved_uml`,
		uid, string(raw),
	)
	return err
}

func (t *sqliteTx) DeleteUser(uid string) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM users WHERE uid = ?`, uid)
	return err
}

func (t *sqliteTx) GetUML(id string) (*UML, error) {
	row := t.tx.QueryRowContext(t.ctx,
		`SELECT content, privacy, name, description, timestamp, diagram FROM uml WHERE id = ?`, id)

	var d UML
	err := row.Scan(&d.Content, &d.Privacy, &d.Name, &d.Description, &d.Timestamp, &d.Diagram)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (t *sqliteTx) SetUML(id string, doc *UML) error {
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO uml (id, content, privacy, name, description, timestamp, diagram)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			privacy = excluded.privacy,
			name = excluded.name,
			description = excluded.description,
			timestamp = excluded.timestamp,
			diagram = excluded.diagram`,
		id, doc.Content, doc.Privacy, doc.Name, doc.Description, doc.Timestamp, doc.Diagram,
	)
	return err
}

func (t *sqliteTx) DeleteUML(id string) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM uml WHERE id = ?`, id)
	return err
}

func (t *sqliteTx) ListUML() ([]Entry, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT id, content, privacy, name, description, timestamp, diagram FROM uml`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Content, &e.Privacy, &e.Name, &e.Description, &e.Timestamp, &e.Diagram); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
