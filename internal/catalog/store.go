// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes the JSON documents written by the ingest
// pipelines into a SQLite database so they can be searched and exported.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	dbFile     = "catalog.db"
	exportFile = "export.yaml"
)

// Kind distinguishes the two document shapes in the catalog.
type Kind string

const (
	KindRecord   Kind = "record"
	KindMetadata Kind = "metadata"
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates cfg.Dir/catalog.db and ensures the schema
// exists.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(cfg.Dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ExportPath returns where ExportYAML writes.
func (s *Store) ExportPath() string {
	return filepath.Join(s.dir, exportFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT,
			source TEXT,
			content TEXT,
			segments INTEGER,
			authors TEXT,
			keywords TEXT,
			date TEXT,
			file_mod_time TEXT NOT NULL,
			run_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			indexed INTEGER,
			updated INTEGER,
			skipped INTEGER,
			failed INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
