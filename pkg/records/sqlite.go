package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/seatmap/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS section_records (
    section_id   TEXT PRIMARY KEY,
    row_label    TEXT NOT NULL DEFAULT '',
    price        TEXT NOT NULL DEFAULT '',
    ticket_count INTEGER NOT NULL DEFAULT 0,
    capacity     INTEGER NOT NULL DEFAULT 0,
    description  TEXT NOT NULL DEFAULT '',
    updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "open %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "open %s", path)
	}
	s := &SQLiteStore{db: db, path: path}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenSQLiteMemory opens an in-memory database, used by tests.
func OpenSQLiteMemory() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: ":memory:"}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Lookup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section_id, row_label, price, ticket_count, capacity, description FROM section_records`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "query %s", s.path)
	}
	defer rows.Close()

	out := Lookup{}
	for rows.Next() {
		var (
			id         string
			row, price string
			r          SectionRecord
		)
		if err := rows.Scan(&id, &row, &price, &r.TicketCount, &r.Capacity, &r.Description); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "scan %s", s.path)
		}
		r.Row, r.Price = Text(row), Text(price)
		out[id] = r
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "query %s", s.path)
	}
	return out, nil
}

// Put upserts every record in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, recs Lookup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO section_records (section_id, row_label, price, ticket_count, capacity, description, updated_at)
VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
ON CONFLICT(section_id) DO UPDATE SET
    row_label = excluded.row_label,
    price = excluded.price,
    ticket_count = excluded.ticket_count,
    capacity = excluded.capacity,
    description = excluded.description,
    updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range recs.IDs() {
		r := recs[id]
		if _, err := stmt.ExecContext(ctx, id, string(r.Row), string(r.Price), r.TicketCount, r.Capacity, r.Description); err != nil {
			return fmt.Errorf("upsert %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
