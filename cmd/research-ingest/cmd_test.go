package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-ingest/internal/catalog"
	"github.com/pdiddy/research-ingest/internal/metadata"
	"github.com/pdiddy/research-ingest/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg types.Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfigOverride(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("metadata.provider", "gemini")
	v.Set("transcription.output_dir", "out/pods")

	var cfg types.Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, types.ProviderGemini, cfg.Metadata.Provider)
	assert.Equal(t, "out/pods", cfg.Transcription.OutputDir)
	assert.Equal(t, "gpt-4o-mini", cfg.Metadata.Model)
}

func TestAPIKeyPrefersConfig(t *testing.T) {
	assert.Equal(t, "from-config", apiKey(types.AIConfig{APIKey: "from-config"}))
}

func TestFormatSearchOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatSearchOutput(&buf, nil, false))
	assert.Equal(t, "No results found.\n", buf.String())

	buf.Reset()
	entries := []catalog.Entry{{Name: "XYZ123", Kind: catalog.KindRecord, Source: "YouTube", Title: "https://www.youtube.com/watch?v=XYZ123"}}
	require.NoError(t, formatSearchOutput(&buf, entries, false))
	assert.Contains(t, buf.String(), "XYZ123")
	assert.True(t, strings.HasSuffix(buf.String(), "1 results\n"))

	buf.Reset()
	require.NoError(t, formatSearchOutput(&buf, entries, true))
	assert.Contains(t, buf.String(), `"kind": "record"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"pdf", "metadata", "podcast", "catalog", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestPDFRequiresOneArgument(t *testing.T) {
	assert.Error(t, pdfCmd.Args(pdfCmd, nil))
	assert.Error(t, pdfCmd.Args(pdfCmd, []string{"a", "b"}))
	assert.NoError(t, pdfCmd.Args(pdfCmd, []string{"papers"}))
}

func TestPodcastRequiresOneArgument(t *testing.T) {
	assert.Error(t, podcastCmd.Args(podcastCmd, nil))
	assert.NoError(t, podcastCmd.Args(podcastCmd, []string{"https://youtu.be/x"}))
}

// executeRoot runs the CLI with args and returns what it wrote to stdout and
// stderr. Flag values are reset first so earlier runs do not leak into this one.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestMetadataFlagRules(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errMsg    string
		errIs     error
		stderrMsg string
	}{
		{
			name:   "neither folder nor file",
			args:   []string{"metadata"},
			errMsg: "at least one of the flags in the group [folder file] is required",
		},
		{
			name:   "folder and file together",
			args:   []string{"metadata", "--folder", "notes", "--file", "paper.md"},
			errMsg: "none of the others can be",
		},
		{
			name:      "file without md suffix",
			args:      []string{"metadata", "--file", "notes.txt"},
			errIs:     metadata.ErrInvalidMarkdown,
			stderrMsg: "Please provide a valid Markdown file.",
		},
		{
			name:      "md file that does not exist",
			args:      []string{"metadata", "--file", filepath.Join(t.TempDir(), "missing.md")},
			errIs:     metadata.ErrInvalidMarkdown,
			stderrMsg: "Please provide a valid Markdown file.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := executeRoot(t, tt.args...)
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			if tt.errIs != nil {
				assert.True(t, errors.Is(err, tt.errIs), "err = %v", err)
			}
			if tt.stderrMsg != "" {
				assert.Contains(t, stderr, tt.stderrMsg)
			}
		})
	}
}

func TestPDFExitStatusOnItemFailure(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.pdf"), []byte("not a pdf"), 0o644))

	out := filepath.Join(t.TempDir(), "publications")
	args := []string{"pdf", in, "--backend", "native", "--output", out}

	stdout, _, err := executeRoot(t, args...)
	require.NoError(t, err, "a failed item alone does not fail the command")
	assert.Contains(t, stdout, "Batch summary: 0 converted")

	_, _, err = executeRoot(t, append(args, "--strict")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 file(s) failed conversion")
}
