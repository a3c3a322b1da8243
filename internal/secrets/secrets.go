// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API keys from the process environment, a .env
// file and a directory of plain-text key files, in that order of precedence.
//
// In the key directory each file is one secret: the filename is the key name
// and the trimmed file contents are the value. OPENAI_API_KEY is looked up as
// the file openai-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/research-ingest/internal/logger"
)

// Well-known keys.
const (
	OpenAIKey = "OPENAI_API_KEY"
	GeminiKey = "GEMINI_API_KEY"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret %s: %v", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv parses a .env file without touching the process environment.
// A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

// Store answers key lookups across the three sources.
type Store struct {
	files  map[string]string
	dotenv map[string]string
	getenv func(string) string
}

// Open loads the key directory and the .env file.
func Open(dir, envFile string) (*Store, error) {
	files, err := Load(dir)
	if err != nil {
		return nil, err
	}
	dotenv, err := LoadDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	return &Store{files: files, dotenv: dotenv, getenv: os.Getenv}, nil
}

// FileName maps an environment-style key to its key file name.
func FileName(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}

// Keys returns the sorted names of the key files loaded from the directory.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.files))
}

// Get returns the value of key, or "" when no source defines it.
func (s *Store) Get(key string) string {
	if v := strings.TrimSpace(s.getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(s.dotenv[key]); v != "" {
		return v
	}
	if v := s.files[FileName(key)]; v != "" {
		return v
	}
	return s.files[key]
}
