// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package command runs external tools and captures their output. Pipelines
// depend on the Runner interface so tests can substitute canned results.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/research-ingest/internal/logger"
)

// Result holds the captured output of a command that exited successfully.
type Result struct {
	Stdout string
	Stderr string
}

// ExitError reports a command that started but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, msg)
}

// Runner executes external programs.
type Runner interface {
	// LookPath resolves an executable on PATH.
	LookPath(file string) (string, error)

	// Run executes name with args, waits for it and returns its output.
	// A non-zero exit status is returned as *ExitError.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// OSRunner is the production Runner backed by os/exec.
type OSRunner struct{}

// LookPath implements Runner.
func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run implements Runner.
func (OSRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logger.Debug("running: %s %s", name, strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return res, &ExitError{
			Name:   name,
			Code:   ee.ExitCode(),
			Stdout: res.Stdout,
			Stderr: res.Stderr,
		}
	}
	return res, fmt.Errorf("running %s: %w", name, err)
}

// Available reports whether file is on PATH and exits cleanly with args.
func Available(ctx context.Context, r Runner, file string, args ...string) bool {
	if _, err := r.LookPath(file); err != nil {
		return false
	}
	_, err := r.Run(ctx, file, args...)
	return err == nil
}
