// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/research-ingest/pkg/types"
)

// fakeConverter writes canned Markdown to the expected .mmd path, or returns
// an error, and records which PDFs it was asked to convert.
type fakeConverter struct {
	outputs map[string]string // base name -> markdown
	errs    map[string]error  // base name -> error
	calls   []string
}

func (f *fakeConverter) Convert(_ context.Context, pdfPath, outDir string) (string, error) {
	base := filepath.Base(pdfPath)
	f.calls = append(f.calls, base)
	if err, ok := f.errs[base]; ok {
		return "", err
	}
	out, ok := f.outputs[base]
	if !ok {
		return "", errors.New("unexpected pdf: " + base)
	}
	if err := os.WriteFile(MarkdownPath(outDir, pdfPath), []byte(out), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// setupFolder creates an input folder with the named PDFs and an empty output folder.
func setupFolder(t *testing.T, names ...string) (inDir, outDir string) {
	t.Helper()
	tmp := t.TempDir()
	inDir = filepath.Join(tmp, "pdfs")
	outDir = filepath.Join(tmp, "output", "publications")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(inDir, n), []byte("%PDF-1.4 fake"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return inDir, outDir
}

func readRecord(t *testing.T, path string) types.ConversionRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	var rec types.ConversionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("parsing record: %v", err)
	}
	return rec
}

func TestConvertPDF(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool // create the .mmd before running
		wantStatus types.ItemStatus
		wantCalls  int
	}{
		{
			name:       "successful conversion",
			converter:  &fakeConverter{outputs: map[string]string{"paper.pdf": "# Title\n\nContent here."}},
			wantStatus: types.ItemConverted,
			wantCalls:  1,
		},
		{
			name:       "skip existing markdown",
			converter:  &fakeConverter{outputs: map[string]string{"paper.pdf": "should not be called"}},
			preCreate:  true,
			wantStatus: types.ItemSkipped,
			wantCalls:  0,
		},
		{
			name:       "conversion failure",
			converter:  &fakeConverter{errs: map[string]error{"paper.pdf": errors.New("nougat crashed")}},
			wantStatus: types.ItemFailed,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inDir, outDir := setupFolder(t, "paper.pdf")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if tt.preCreate {
				if err := os.WriteFile(filepath.Join(outDir, "paper.mmd"), []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			res := ConvertPDF(context.Background(), tt.converter, filepath.Join(inDir, "paper.pdf"), outDir)

			if res.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (err %v)", res.Status, tt.wantStatus, res.Err)
			}
			if len(tt.converter.calls) != tt.wantCalls {
				t.Errorf("converter called %d times, want %d", len(tt.converter.calls), tt.wantCalls)
			}
			_, err := os.Stat(filepath.Join(outDir, "paper.json"))
			if tt.wantStatus == types.ItemConverted && err != nil {
				t.Errorf("expected paper.json to be written: %v", err)
			}
			if tt.wantStatus != types.ItemConverted && err == nil {
				t.Error("paper.json should not be written")
			}
		})
	}
}

func TestConvertPDF_ContentMatchesMarkdownBytes(t *testing.T) {
	inDir, outDir := setupFolder(t, "paper.pdf")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	md := "# Résumé\n\n$$ \\alpha < \\beta $$\n\n| a | b |\r\n\ttrailing  \n"
	conv := &fakeConverter{outputs: map[string]string{"paper.pdf": md}}

	res := ConvertPDF(context.Background(), conv, filepath.Join(inDir, "paper.pdf"), outDir)
	if res.Status != types.ItemConverted {
		t.Fatalf("status = %q (err %v)", res.Status, res.Err)
	}

	mmd, err := os.ReadFile(filepath.Join(outDir, "paper.mmd"))
	if err != nil {
		t.Fatal(err)
	}
	rec := readRecord(t, res.Output)
	if rec.Content != string(mmd) {
		t.Errorf("content %q differs from .mmd %q", rec.Content, string(mmd))
	}
	if rec.Segments != nil {
		t.Error("PDF records must not carry segments")
	}
}

func TestConvertFolder_SkipsConvertedAndWritesRecord(t *testing.T) {
	inDir, outDir := setupFolder(t, "a.pdf", "b.pdf")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "a.mmd"), []byte("done"), 0o644); err != nil {
		t.Fatal(err)
	}

	conv := &fakeConverter{outputs: map[string]string{"b.pdf": "# B"}}
	var log bytes.Buffer
	result, err := ConvertFolder(context.Background(), conv, inDir, outDir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(conv.calls) != 1 || conv.calls[0] != "b.pdf" {
		t.Errorf("converter calls = %v, want [b.pdf]", conv.calls)
	}
	if result.Converted != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 converted, 1 skipped", result)
	}

	rec := readRecord(t, filepath.Join(outDir, "b.json"))
	if rec.Source != types.SourcePDF {
		t.Errorf("source = %q, want PDF", rec.Source)
	}
	if rec.Title != "b.pdf" {
		t.Errorf("title = %q, want b.pdf", rec.Title)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a.json")); err == nil {
		t.Error("a.json should not be produced for a skipped PDF")
	}
}

func TestConvertFolder_IsolatesFailures(t *testing.T) {
	inDir, outDir := setupFolder(t, "a.pdf", "b.pdf", "c.pdf", "notes.txt")

	conv := &fakeConverter{
		outputs: map[string]string{"a.pdf": "# A", "c.pdf": "# C"},
		errs:    map[string]error{"b.pdf": errors.New("bad pdf")},
	}
	var log bytes.Buffer
	result, err := ConvertFolder(context.Background(), conv, inDir, outDir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Converted != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 converted, 1 failed", result)
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3 (non-PDF files are ignored)", result.Total())
	}
	if !strings.Contains(log.String(), "failed:  b.pdf (bad pdf)") {
		t.Errorf("log should report b.pdf failure, got:\n%s", log.String())
	}
	if !strings.Contains(log.String(), "Batch summary:") {
		t.Error("log should contain summary line")
	}
}

func TestConvertFolder_MissingInput(t *testing.T) {
	tmp := t.TempDir()
	_, err := ConvertFolder(context.Background(), &fakeConverter{}, filepath.Join(tmp, "nope"), filepath.Join(tmp, "out"), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing input folder")
	}
}

func TestReadMarkdownMissing(t *testing.T) {
	_, err := readMarkdown(filepath.Join(t.TempDir(), "a.mmd"))
	if !errors.Is(err, ErrMissingOutput) {
		t.Errorf("err = %v, want ErrMissingOutput", err)
	}
}
