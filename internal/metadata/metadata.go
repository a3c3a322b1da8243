// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata extracts structured bibliographic metadata from Markdown
// documents by asking a hosted language model to call a single function whose
// parameters are the metadata fields.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/internal/pipeline"
	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	markdownSuffix = ".md"
	outputSuffix   = "_metadata.json"
)

// ErrInvalidMarkdown is returned for a --file argument that is not an
// existing .md file.
var ErrInvalidMarkdown = errors.New("please provide a valid Markdown file")

// Backend abstracts the hosted model so tests can supply a mock. A nil
// Metadata with a nil error means the model returned no function call.
type Backend interface {
	Extract(ctx context.Context, text string) (*types.Metadata, error)
}

// OutputPath returns where the metadata for mdPath is written.
func OutputPath(outDir, mdPath string) string {
	return pipeline.OutputPath(outDir, mdPath, outputSuffix)
}

// ValidateMarkdownFile checks that path is an existing regular file with a
// .md extension.
func ValidateMarkdownFile(path string) error {
	if !strings.HasSuffix(path, markdownSuffix) {
		return fmt.Errorf("%w: %s", ErrInvalidMarkdown, path)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrInvalidMarkdown, path)
	}
	return nil
}

// ExtractFile sends one Markdown file to the backend and writes the result to
// outDir. When the model makes no function call the file contains null.
// Existing output is kept unless force is set.
func ExtractFile(ctx context.Context, b Backend, mdPath, outDir string, force bool) types.ItemResult {
	outPath := OutputPath(outDir, mdPath)

	if !force {
		done, err := pipeline.Exists(outPath)
		if err != nil {
			return types.Failed(mdPath, err)
		}
		if done {
			return types.Skipped(mdPath, outPath)
		}
	}

	text, err := os.ReadFile(mdPath)
	if err != nil {
		return types.Failed(mdPath, fmt.Errorf("reading markdown: %w", err))
	}

	logger.Info("extracting metadata from %s", mdPath)

	meta, err := b.Extract(ctx, string(text))
	if err != nil {
		return types.Failed(mdPath, err)
	}

	if meta == nil {
		logger.Warn("%s: model returned no %s call", filepath.Base(mdPath), FunctionName)
		if err := pipeline.WriteJSON(outPath, nil); err != nil {
			return types.Failed(mdPath, err)
		}
		return types.Converted(mdPath, outPath)
	}

	meta.Normalize()
	if err := pipeline.WriteJSON(outPath, meta); err != nil {
		return types.Failed(mdPath, err)
	}
	return types.Converted(mdPath, outPath)
}

// ExtractFolder extracts metadata for every Markdown file in inDir. Per-file
// failures are reported to w and counted, not returned.
func ExtractFolder(ctx context.Context, b Backend, inDir, outDir string, force bool, w io.Writer) (types.BatchResult, error) {
	info, err := os.Stat(inDir)
	if err != nil {
		return types.BatchResult{}, fmt.Errorf("reading input folder: %w", err)
	}
	if !info.IsDir() {
		return types.BatchResult{}, fmt.Errorf("input %s is not a folder", inDir)
	}
	return extractAll(ctx, b, pipeline.Enumerate(inDir, markdownSuffix), outDir, force, w)
}

// ExtractSingle extracts metadata for one validated Markdown file.
func ExtractSingle(ctx context.Context, b Backend, mdPath, outDir string, force bool, w io.Writer) (types.BatchResult, error) {
	if err := ValidateMarkdownFile(mdPath); err != nil {
		return types.BatchResult{}, err
	}
	return extractAll(ctx, b, pipeline.Single(mdPath), outDir, force, w)
}

func extractAll(ctx context.Context, b Backend, items iter.Seq[string], outDir string, force bool, w io.Writer) (types.BatchResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return types.BatchResult{}, fmt.Errorf("creating output directory: %w", err)
	}
	step := func(ctx context.Context, mdPath string) types.ItemResult {
		return ExtractFile(ctx, b, mdPath, outDir, force)
	}
	return pipeline.Run(ctx, items, step, w), nil
}

// NewBackend returns the backend for cfg.Provider.
func NewBackend(ctx context.Context, cfg types.AIConfig) (Backend, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAIBackend(cfg)
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want openai or gemini)", cfg.Provider)
	}
}
