// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds catalog search parameters.
type QueryOptions struct {
	// Query is a case-insensitive substring matched against title, content,
	// authors and keywords.
	Query string

	// Source filters by record source (e.g. "PDF", "YouTube").
	Source string

	// Kind filters by document kind.
	Kind Kind

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one catalog document.
type Entry struct {
	Path     string   `json:"path" yaml:"path"`
	Name     string   `json:"name" yaml:"name"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Title    string   `json:"title" yaml:"title"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Content  string   `json:"content,omitempty" yaml:"content,omitempty"`
	Segments int      `json:"segments,omitempty" yaml:"segments,omitempty"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Date     string   `json:"date,omitempty" yaml:"date,omitempty"`
	RunID    string   `json:"run_id" yaml:"run_id"`
}

// likeEscaper escapes LIKE wildcards so the query matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns documents matching opts, ordered by kind and name.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT path, name, kind, title, source, content, segments, authors, keywords, date, run_id
		FROM documents WHERE 1=1`)

	if opts.Query != "" {
		pattern := "%" + likeEscaper.Replace(opts.Query) + "%"
		qb.WriteString(` AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
			OR authors LIKE ? ESCAPE '\' OR keywords LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if opts.Source != "" {
		qb.WriteString(` AND source = ?`)
		args = append(args, opts.Source)
	}
	if opts.Kind != "" {
		qb.WriteString(` AND kind = ?`)
		args = append(args, string(opts.Kind))
	}

	qb.WriteString(` ORDER BY kind DESC, name LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			kind              string
			authors, keywords string
		)
		if err := rows.Scan(
			&e.Path, &e.Name, &kind, &e.Title, &e.Source, &e.Content,
			&e.Segments, &authors, &keywords, &e.Date, &e.RunID,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Kind = Kind(kind)
		if err := json.Unmarshal([]byte(authors), &e.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of %s: %w", e.Path, err)
		}
		if err := json.Unmarshal([]byte(keywords), &e.Keywords); err != nil {
			return nil, fmt.Errorf("decoding keywords of %s: %w", e.Path, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
