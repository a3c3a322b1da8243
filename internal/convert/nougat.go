// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-ingest/internal/command"
	"github.com/pdiddy/research-ingest/internal/container"
	"github.com/pdiddy/research-ingest/internal/logger"
)

// NougatConverter converts PDFs with the nougat OCR model, either from a
// local installation or from a container image.
type NougatConverter struct {
	runner command.Runner
	bin    string

	runtime container.Runtime
	image   string
}

// NewNougatConverter runs the nougat executable bin through runner.
func NewNougatConverter(runner command.Runner, bin string) *NougatConverter {
	return &NougatConverter{runner: runner, bin: bin}
}

// NewContainerNougatConverter runs nougat from image through rt. It verifies
// that the image exists locally before returning.
func NewContainerNougatConverter(ctx context.Context, rt container.Runtime, image string) (*NougatConverter, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("nougat image not available in %s: %w", rt.Name(), err)
	}
	return &NougatConverter{runtime: rt, image: image}, nil
}

func nougatArgs(pdfPath, outDir string) []string {
	return []string{"--markdown", "pdf", pdfPath, "--out", outDir}
}

// Convert runs nougat on pdfPath and returns the Markdown it wrote to outDir.
func (n *NougatConverter) Convert(ctx context.Context, pdfPath, outDir string) (string, error) {
	res, err := n.run(ctx, pdfPath, outDir)
	if err != nil {
		return "", fmt.Errorf("converting %s with nougat: %w", pdfPath, err)
	}
	if out := strings.TrimSpace(res.Stdout); out != "" {
		logger.Debug("nougat: %s", out)
	}
	return readMarkdown(MarkdownPath(outDir, pdfPath))
}

func (n *NougatConverter) run(ctx context.Context, pdfPath, outDir string) (command.Result, error) {
	if n.runtime == nil {
		return n.runner.Run(ctx, n.bin, nougatArgs(pdfPath, outDir)...)
	}

	absPDF, err := filepath.Abs(pdfPath)
	if err != nil {
		return command.Result{}, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return command.Result{}, err
	}
	mounts := []container.Mount{
		{Source: filepath.Dir(absPDF)},
		{Source: absOut},
	}
	return n.runtime.Run(ctx, n.image, mounts, nougatArgs(absPDF, absOut))
}
