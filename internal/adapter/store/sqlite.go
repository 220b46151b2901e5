package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"research/internal/domain"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS vector_records (
    seq       INTEGER PRIMARY KEY,
    id        TEXT NOT NULL,
    user_id   TEXT NOT NULL,
    title     TEXT NOT NULL DEFAULT '',
    text      TEXT NOT NULL DEFAULT '',
    embedding TEXT NOT NULL
)`

// SQLitePersister keeps the collection in a SQLite table. Save replaces the
// table content inside one transaction; seq preserves collection order.
type SQLitePersister struct {
	db   *sql.DB
	path string
}

// NewSQLitePersister opens (or creates) the SQLite database at path.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLitePersister{db: db, path: path}, nil
}

func (p *SQLitePersister) Load() ([]domain.VectorRecord, error) {
	rows, err := p.db.Query(`SELECT id, user_id, title, text, embedding FROM vector_records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []domain.VectorRecord
	for rows.Next() {
		var rec domain.VectorRecord
		var embedding string
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Title, &rec.Text, &embedding); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(embedding), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding of %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *SQLitePersister) Save(records []domain.VectorRecord) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM vector_records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO vector_records(seq, id, user_id, title, text, embedding) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		embedding, err := json.Marshal(rec.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding of %s: %w", rec.ID, err)
		}
		if _, err := stmt.Exec(i, rec.ID, rec.Owner, rec.Title, rec.Text, string(embedding)); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (p *SQLitePersister) Location() string {
	return "sqlite:" + p.path
}

func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
