package metadata

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

// --- mock backend ---

type mockBackend struct {
	meta  *types.Metadata
	err   error
	texts []string
}

func (m *mockBackend) Extract(_ context.Context, text string) (*types.Metadata, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	if m.meta == nil {
		return nil, nil
	}
	cp := *m.meta
	return &cp, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	return out
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("out", "in/paper.md")
	want := filepath.Join("out", "paper_metadata.json")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestValidateMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "paper.md")
	txt := filepath.Join(dir, "paper.txt")
	writeFile(t, md, "# Title")
	writeFile(t, txt, "text")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing markdown", md, false},
		{"wrong extension", txt, true},
		{"missing file", filepath.Join(dir, "missing.md"), true},
		{"directory", dir, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMarkdownFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMarkdown) {
				t.Errorf("err = %v, want ErrInvalidMarkdown", err)
			}
		})
	}
}

func TestExtractFile_WritesNormalizedMetadata(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(dir, "paper.md")
	writeFile(t, md, "# Deep Learning\n\nBody.")

	b := &mockBackend{meta: &types.Metadata{Title: "Deep Learning", Type: "article", Date: "2020-01-01"}}
	res := ExtractFile(context.Background(), b, md, outDir, false)
	if res.Status != types.ItemConverted {
		t.Fatalf("status = %s, err = %v", res.Status, res.Err)
	}
	if len(b.texts) != 1 || b.texts[0] != "# Deep Learning\n\nBody." {
		t.Errorf("backend received %q", b.texts)
	}

	got := readJSON(t, filepath.Join(outDir, "paper_metadata.json"))
	if got["Title"] != "Deep Learning" {
		t.Errorf("Title = %v", got["Title"])
	}
	authors, ok := got["authors"].([]any)
	if !ok || len(authors) != 0 {
		t.Errorf("authors = %#v, want empty list", got["authors"])
	}
}

func TestExtractFile_NoFunctionCallWritesNull(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "empty.md")
	writeFile(t, md, "nothing here")

	res := ExtractFile(context.Background(), &mockBackend{}, md, dir, false)
	if res.Status != types.ItemConverted {
		t.Fatalf("status = %s, err = %v", res.Status, res.Err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "empty_metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "null" {
		t.Errorf("output = %q, want null", data)
	}
}

func TestExtractFile_SkipAndForce(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "paper.md")
	writeFile(t, md, "# Paper")
	out := filepath.Join(dir, "paper_metadata.json")
	writeFile(t, out, `{"Title":"old"}`)

	b := &mockBackend{meta: &types.Metadata{Title: "new"}}

	res := ExtractFile(context.Background(), b, md, dir, false)
	if res.Status != types.ItemSkipped {
		t.Fatalf("status = %s, want skipped", res.Status)
	}
	if len(b.texts) != 0 {
		t.Error("backend called for existing output")
	}

	res = ExtractFile(context.Background(), b, md, dir, true)
	if res.Status != types.ItemConverted {
		t.Fatalf("status = %s, want converted", res.Status)
	}
	if got := readJSON(t, out)["Title"]; got != "new" {
		t.Errorf("Title = %v, want new", got)
	}
}

func TestExtractFile_BackendError(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "paper.md")
	writeFile(t, md, "# Paper")

	res := ExtractFile(context.Background(), &mockBackend{err: errors.New("quota exceeded")}, md, dir, false)
	if res.Status != types.ItemFailed {
		t.Fatalf("status = %s, want failed", res.Status)
	}
	if _, err := os.Stat(filepath.Join(dir, "paper_metadata.json")); !os.IsNotExist(err) {
		t.Error("output written despite backend error")
	}
}

func TestExtractFolder(t *testing.T) {
	dir := t.TempDir()
	inDir := filepath.Join(dir, "md")
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(inDir, "a.md"), "# A")
	writeFile(t, filepath.Join(inDir, "b.md"), "# B")
	writeFile(t, filepath.Join(inDir, "notes.txt"), "ignored")

	var buf bytes.Buffer
	b := &mockBackend{meta: &types.Metadata{Title: "T"}}
	res, err := ExtractFolder(context.Background(), b, inDir, outDir, false, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Converted != 2 || res.Failed != 0 {
		t.Errorf("result = %+v, want 2 converted", res)
	}
	for _, name := range []string{"a_metadata.json", "b_metadata.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(buf.String(), "Batch summary: 2 converted") {
		t.Errorf("summary missing from output:\n%s", buf.String())
	}
}

func TestExtractFolder_MissingInput(t *testing.T) {
	_, err := ExtractFolder(context.Background(), &mockBackend{}, filepath.Join(t.TempDir(), "nope"), t.TempDir(), false, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing folder")
	}
}

func TestExtractSingle_InvalidFile(t *testing.T) {
	b := &mockBackend{}
	_, err := ExtractSingle(context.Background(), b, "notes.txt", t.TempDir(), false, &bytes.Buffer{})
	if !errors.Is(err, ErrInvalidMarkdown) {
		t.Fatalf("err = %v, want ErrInvalidMarkdown", err)
	}
	if len(b.texts) != 0 {
		t.Error("backend called for invalid file")
	}
}

func TestJSONSchema(t *testing.T) {
	s := JSONSchema()
	if s["additionalProperties"] != false {
		t.Error("schema must forbid additional properties")
	}
	req := s["required"].([]string)
	props := s["properties"].(map[string]any)
	if len(req) != len(props) {
		t.Errorf("required %d of %d properties", len(req), len(props))
	}
	for _, name := range []string{"Title", "type", "authors", "references"} {
		if _, ok := props[name]; !ok {
			t.Errorf("missing property %q", name)
		}
	}
}

func TestNewBackend_UnknownProvider(t *testing.T) {
	_, err := NewBackend(context.Background(), types.AIConfig{Provider: "claude", APIKey: "k"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
