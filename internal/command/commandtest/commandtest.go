// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package commandtest provides a scriptable command.Runner for tests.
package commandtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pdiddy/research-ingest/internal/command"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a shell-like line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner records calls and answers them with Handler. Binaries listed in
// OnPath resolve through LookPath; everything else is "not found".
type Runner struct {
	OnPath  map[string]bool
	Handler func(name string, args []string) (command.Result, error)

	mu    sync.Mutex
	calls []Call
}

// LookPath implements command.Runner.
func (r *Runner) LookPath(file string) (string, error) {
	if r.OnPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

// Run implements command.Runner.
func (r *Runner) Run(_ context.Context, name string, args ...string) (command.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	r.mu.Unlock()

	if r.Handler == nil {
		return command.Result{}, nil
	}
	return r.Handler(name, args)
}

// Calls returns the recorded invocations in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded invocations of name.
func (r *Runner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
