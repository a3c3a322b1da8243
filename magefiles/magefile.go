//go:build mage

// Package main contains Mage build targets for research-ingest developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the input and output folders the pipelines expect.
var projectDirs = []string{
	"input/pdfs",
	"input/markdown",
	"output/publications",
	"output/metadata",
	"output/podcasts",
	"output/catalog",
	".secrets",
}

// Init creates the project directory structure for the pipelines.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "research-ingest"
	cmdPkg  = "./cmd/research-ingest"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := "dev"
	if out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && out != "" {
		version = out
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", binPath(), version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// externalTools lists the executables the pipelines shell out to.
var externalTools = []struct {
	name    string
	purpose string
}{
	{"nougat", "pdf (default backend)"},
	{"yt-dlp", "podcast (YouTube audio download)"},
	{"ffmpeg", "podcast (yt-dlp audio extraction)"},
	{"whisper", "podcast (speech recognition)"},
	{"docker", "pdf --container (or podman)"},
	{"nvidia-smi", "podcast (cuda device detection, optional)"},
}

// Tools reports which external executables are on PATH.
func Tools() error {
	missing := 0
	for _, t := range externalTools {
		path, err := exec.LookPath(t.name)
		if err != nil {
			fmt.Printf("  missing  %-10s  %s\n", t.name, t.purpose)
			missing++
			continue
		}
		fmt.Printf("  found    %-10s  %s\n", t.name, path)
	}
	if missing > 0 {
		fmt.Printf("%d tool(s) not found; the commands that need them will fail.\n", missing)
	}
	return nil
}

// Pdf converts a folder of PDFs with the freshly built binary.
func Pdf(folder string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "pdf", folder)
}

// Metadata extracts metadata for a folder of Markdown files.
func Metadata(folder string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "metadata", "--folder", folder)
}

// Podcast transcribes an audio file or YouTube URL.
func Podcast(input string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "podcast", input)
}

// Index refreshes the catalog from the output folders.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "catalog", "index")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories that hold no project sources.
func skipDir(name string) bool {
	return name == ".git" || name == "bin" || name == "output" || strings.HasPrefix(name, "_")
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				total++
			}
		}
		return sc.Err()
	})
	return total, err
}

// countDocWords counts words in the Markdown files of the repository.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
