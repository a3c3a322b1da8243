// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline holds the per-item pattern shared by every ingest stage:
// enumerate candidate inputs, skip those whose output already exists, run the
// converter, and persist a JSON document named after the input.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/pkg/types"
)

// Step processes one input item and reports the outcome.
type Step func(ctx context.Context, item string) types.ItemResult

// Enumerate returns the regular files in dir whose names end in suffix, in
// directory listing order. The sequence is lazy and can be ranged over more
// than once; each range re-reads the directory. A directory that cannot be
// read yields nothing and logs a warning.
func Enumerate(dir, suffix string) iter.Seq[string] {
	return func(yield func(string) bool) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("reading %s: %v", dir, err)
			return
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
				continue
			}
			if !yield(filepath.Join(dir, e.Name())) {
				return
			}
		}
	}
}

// Single returns a sequence with exactly one element.
func Single(item string) iter.Seq[string] {
	return func(yield func(string) bool) {
		yield(item)
	}
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputPath derives <outDir>/<base><suffix> from input. Distinct input base
// names map to distinct output paths.
func OutputPath(outDir, input, suffix string) string {
	return filepath.Join(outDir, BaseName(input)+suffix)
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned so that callers do not silently re-run or skip.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Marshal encodes v as JSON with 4-space indentation and a trailing newline.
// HTML characters are written as-is.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v to path, replacing any existing file.
func WriteJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Report prints a single status line for res.
func Report(w io.Writer, res types.ItemResult) {
	name := filepath.Base(res.Item)
	switch res.Status {
	case types.ItemConverted:
		fmt.Fprintf(w, "converted: %s -> %s\n", name, res.Output)
	case types.ItemSkipped:
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
	case types.ItemFailed:
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, res.Err)
	}
}

// Run drives items through step one at a time. Each item is fully processed
// before the next one is read, and a failed item does not stop the run.
func Run(ctx context.Context, items iter.Seq[string], step Step, w io.Writer) types.BatchResult {
	var result types.BatchResult
	for item := range items {
		res := step(ctx, item)
		Report(w, res)
		result.Add(res)
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
