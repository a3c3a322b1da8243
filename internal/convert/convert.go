// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF files into Markdown and wraps the result in a
// ConversionRecord. The Markdown intermediate (<name>.mmd) doubles as the
// completion marker: a PDF whose .mmd exists in the output directory is not
// converted again.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/internal/pipeline"
	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	pdfSuffix      = ".pdf"
	markdownSuffix = ".mmd"
	recordSuffix   = ".json"
)

// ErrMissingOutput is returned when a converter reports success but the
// expected Markdown file is not on disk.
var ErrMissingOutput = errors.New("converter reported success but produced no output")

// Converter transforms a PDF file into Markdown. Implementations leave the
// Markdown at MarkdownPath(outDir, pdfPath) and return its exact content.
type Converter interface {
	Convert(ctx context.Context, pdfPath, outDir string) (string, error)
}

// MarkdownPath returns where the Markdown intermediate for pdfPath lives.
func MarkdownPath(outDir, pdfPath string) string {
	return pipeline.OutputPath(outDir, pdfPath, markdownSuffix)
}

// RecordPath returns where the ConversionRecord for pdfPath is written.
func RecordPath(outDir, pdfPath string) string {
	return pipeline.OutputPath(outDir, pdfPath, recordSuffix)
}

// ConvertPDF converts a single PDF and writes its ConversionRecord to outDir.
// If the Markdown intermediate already exists the PDF is skipped.
func ConvertPDF(ctx context.Context, c Converter, pdfPath, outDir string) types.ItemResult {
	mdPath := MarkdownPath(outDir, pdfPath)

	done, err := pipeline.Exists(mdPath)
	if err != nil {
		return types.Failed(pdfPath, err)
	}
	if done {
		return types.Skipped(pdfPath, mdPath)
	}

	logger.Info("converting %s to %s", pdfPath, outDir)

	content, err := c.Convert(ctx, pdfPath, outDir)
	if err != nil {
		if errors.Is(err, ErrMissingOutput) {
			logger.Warn("%s: expected %s after conversion", filepath.Base(pdfPath), mdPath)
		}
		return types.Failed(pdfPath, err)
	}

	rec := types.ConversionRecord{
		Title:   filepath.Base(pdfPath),
		Source:  types.SourcePDF,
		Content: content,
	}
	outPath := RecordPath(outDir, pdfPath)
	if err := pipeline.WriteJSON(outPath, rec); err != nil {
		return types.Failed(pdfPath, err)
	}
	return types.Converted(pdfPath, outPath)
}

// ConvertFolder converts every PDF in inDir, printing per-file status to w and
// returning a summary. Per-file failures are counted, not returned.
func ConvertFolder(ctx context.Context, c Converter, inDir, outDir string, w io.Writer) (types.BatchResult, error) {
	info, err := os.Stat(inDir)
	if err != nil {
		return types.BatchResult{}, fmt.Errorf("reading input folder: %w", err)
	}
	if !info.IsDir() {
		return types.BatchResult{}, fmt.Errorf("input %s is not a folder", inDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return types.BatchResult{}, fmt.Errorf("creating output directory: %w", err)
	}

	fmt.Fprintf(w, "Processing PDFs from %s to %s\n", inDir, outDir)

	step := func(ctx context.Context, pdfPath string) types.ItemResult {
		return ConvertPDF(ctx, c, pdfPath, outDir)
	}
	return pipeline.Run(ctx, pipeline.Enumerate(inDir, pdfSuffix), step, w), nil
}

// readMarkdown returns the content of the Markdown intermediate, mapping a
// missing file to ErrMissingOutput.
func readMarkdown(mdPath string) (string, error) {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingOutput, mdPath)
		}
		return "", fmt.Errorf("reading %s: %w", mdPath, err)
	}
	return string(data), nil
}
