package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the document as a single row of a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and returns
// a store for the document called name.
func NewSQLiteStore(dbPath, name string) (*SQLiteStore, error) {
	if err := prepareDirectories(dbPath); err != nil {
		return nil, fmt.Errorf("could not create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// A single connection keeps ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, name: name}, nil
}

func prepareDirectories(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name       TEXT    NOT NULL PRIMARY KEY,
		content    BLOB    NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context) (bool, error) {
	var one int

	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE name = ?", s.name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("could not query document: %w", err)
	}

	return true, nil
}

func (s *SQLiteStore) Download(ctx context.Context) ([]byte, error) {
	var content []byte

	err := s.db.QueryRowContext(ctx, "SELECT content FROM documents WHERE name = ?", s.name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s not found", s.name)
	}

	if err != nil {
		return nil, fmt.Errorf("could not read document: %w", err)
	}

	return content, nil
}

func (s *SQLiteStore) Upload(ctx context.Context, content []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content=excluded.content,
			updated_at=excluded.updated_at
	`, s.name, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("could not write document: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
