// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/research-ingest/internal/command"
	"github.com/pdiddy/research-ingest/internal/command/commandtest"
)

// succeedFor builds a handler that succeeds only for the listed command lines.
func succeedFor(lines ...string) func(string, []string) (command.Result, error) {
	ok := make(map[string]bool, len(lines))
	for _, l := range lines {
		ok[l] = true
	}
	return func(name string, args []string) (command.Result, error) {
		key := strings.TrimSpace(name + " " + strings.Join(args, " "))
		if ok[key] {
			return command.Result{}, nil
		}
		return command.Result{}, &command.ExitError{Name: name, Code: 1, Stderr: "failed: " + key}
	}
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		runner   *commandtest.Runner
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			runner: &commandtest.Runner{
				OnPath:  map[string]bool{"docker": true},
				Handler: succeedFor("docker info"),
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			runner: &commandtest.Runner{
				OnPath:  map[string]bool{"podman": true},
				Handler: succeedFor("podman info"),
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			runner: &commandtest.Runner{
				Handler: succeedFor(),
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			runner: &commandtest.Runner{
				OnPath:  map[string]bool{"docker": true, "podman": true},
				Handler: succeedFor("podman info"),
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			runner: &commandtest.Runner{
				OnPath:  map[string]bool{"docker": true, "podman": true},
				Handler: succeedFor("docker info", "podman info"),
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := DetectRuntime(context.Background(), tt.runner)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(command.Runner) Runtime
		cmds    []string
		wantErr bool
	}{
		{
			name: "docker image exists",
			mkRT: func(r command.Runner) Runtime { return newDockerRuntime(r) },
			cmds: []string{"docker image inspect nougat:latest"},
		},
		{
			name:    "docker image not found",
			mkRT:    func(r command.Runner) Runtime { return newDockerRuntime(r) },
			wantErr: true,
		},
		{
			name: "podman image exists",
			mkRT: func(r command.Runner) Runtime { return newPodmanRuntime(r) },
			cmds: []string{"podman image exists nougat:latest"},
		},
		{
			name:    "podman image not found",
			mkRT:    func(r command.Runner) Runtime { return newPodmanRuntime(r) },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := tt.mkRT(&commandtest.Runner{Handler: succeedFor(tt.cmds...)})
			err := rt.ImageExists(context.Background(), "nougat:latest")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "nougat:latest") {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunBuildsMountArgs(t *testing.T) {
	runner := &commandtest.Runner{}
	rt := newDockerRuntime(runner)

	mounts := []Mount{
		{Source: "/data/in"},
		{Source: "/data/out", Target: "/work/out"},
	}
	if _, err := rt.Run(context.Background(), "nougat:latest", mounts, []string{"--markdown", "pdf", "/data/in/a.pdf"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	want := "docker run --rm -v /data/in:/data/in -v /data/out:/work/out nougat:latest --markdown pdf /data/in/a.pdf"
	if got := calls[0].String(); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestRunWrapsFailure(t *testing.T) {
	runner := &commandtest.Runner{
		Handler: func(string, []string) (command.Result, error) {
			return command.Result{}, &command.ExitError{Name: "podman", Code: 125, Stderr: "no such image"}
		},
	}
	rt := newPodmanRuntime(runner)

	_, err := rt.Run(context.Background(), "nougat:latest", nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var ee *command.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("error should wrap *command.ExitError, got %T", err)
	}
	if !strings.Contains(err.Error(), "running podman container nougat:latest") {
		t.Errorf("unexpected error text: %v", err)
	}
}
