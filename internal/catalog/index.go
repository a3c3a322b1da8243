// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-ingest/internal/pipeline"
	"github.com/pdiddy/research-ingest/pkg/types"
)

const metadataSuffix = "_metadata.json"

// errNullMetadata marks a metadata file whose model response had no
// function call.
var errNullMetadata = errors.New("metadata is null")

// IndexSummary holds counts from one indexing run.
type IndexSummary struct {
	RunID   string
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files examined.
func (s IndexSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// document is one catalog row.
type document struct {
	path     string
	name     string
	kind     Kind
	title    string
	source   string
	content  string
	segments int
	authors  []string
	keywords []string
	date     string
}

// Index reads every *.json file in dirs and upserts it. Files whose
// modification time matches the stored one are skipped. On changes
// export.yaml is rewritten.
func (s *Store) Index(ctx context.Context, dirs []string, w io.Writer) (IndexSummary, error) {
	summary := IndexSummary{RunID: uuid.NewString()}
	started := time.Now().UTC().Format(time.RFC3339)

	for _, dir := range dirs {
		for path := range pipeline.Enumerate(dir, ".json") {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			s.indexFile(ctx, path, summary.RunID, &summary, w)
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d (run %s)\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.RunID)

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, indexed, updated, skipped, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, started, summary.Indexed, summary.Updated, summary.Skipped, summary.Failed,
	); err != nil {
		return summary, fmt.Errorf("recording run: %w", err)
	}

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

func (s *Store) indexFile(ctx context.Context, path, runID string, summary *IndexSummary, w io.Writer) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", name, err)
		summary.Failed++
		return
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM documents WHERE path = ?`, path,
	).Scan(&stored)
	if err == nil && stored == modTime {
		fmt.Fprintf(w, "skipped %s\n", name)
		summary.Skipped++
		return
	}
	isUpdate := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		fmt.Fprintf(w, "failed  %s: %v\n", name, err)
		summary.Failed++
		return
	}

	doc, err := loadDocument(path)
	if errors.Is(err, errNullMetadata) {
		fmt.Fprintf(w, "skipped %s (no metadata)\n", name)
		summary.Skipped++
		return
	}
	if err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", name, err)
		summary.Failed++
		return
	}

	if err := s.upsert(ctx, doc, modTime, runID); err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", name, err)
		summary.Failed++
		return
	}

	if isUpdate {
		fmt.Fprintf(w, "updated %s\n", name)
		summary.Updated++
	} else {
		fmt.Fprintf(w, "indexing %s\n", name)
		summary.Indexed++
	}
}

// loadDocument decodes path as a metadata file or a ConversionRecord,
// depending on its name.
func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	if strings.HasSuffix(name, metadataSuffix) {
		var meta *types.Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
		if meta == nil {
			return nil, errNullMetadata
		}
		return &document{
			path:     path,
			name:     strings.TrimSuffix(name, metadataSuffix),
			kind:     KindMetadata,
			title:    meta.Title,
			source:   meta.Type,
			authors:  meta.Authors,
			keywords: meta.Keywords,
			date:     meta.Date,
		}, nil
	}

	var rec types.ConversionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if rec.Source == "" {
		return nil, fmt.Errorf("not a conversion record: missing source")
	}
	return &document{
		path:     path,
		name:     pipeline.BaseName(path),
		kind:     KindRecord,
		title:    rec.Title,
		source:   string(rec.Source),
		content:  rec.Content,
		segments: len(rec.Segments),
	}, nil
}

func (s *Store) upsert(ctx context.Context, d *document, modTime, runID string) error {
	authors, _ := json.Marshal(nonNil(d.authors))
	keywords, _ := json.Marshal(nonNil(d.keywords))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (path, name, kind, title, source, content, segments, authors, keywords, date, file_mod_time, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			name=excluded.name, kind=excluded.kind, title=excluded.title,
			source=excluded.source, content=excluded.content, segments=excluded.segments,
			authors=excluded.authors, keywords=excluded.keywords, date=excluded.date,
			file_mod_time=excluded.file_mod_time, run_id=excluded.run_id`,
		d.path, d.name, string(d.kind), d.title, d.source, d.content, d.segments,
		string(authors), string(keywords), d.date, modTime, runID,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
