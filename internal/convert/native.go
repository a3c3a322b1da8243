// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeConverter extracts the embedded text layer of a PDF in-process. It
// does no OCR, so scanned documents produce no output.
type NativeConverter struct{}

// Convert extracts plain text from pdfPath and writes it as the Markdown
// intermediate in outDir.
func (NativeConverter) Convert(ctx context.Context, pdfPath, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, text); err != nil {
		return "", fmt.Errorf("reading text of %s: %w", pdfPath, err)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%s has no text layer", pdfPath)
	}

	mdPath := MarkdownPath(outDir, pdfPath)
	if err := os.WriteFile(mdPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", mdPath, err)
	}
	return b.String(), nil
}
