// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs conversion tools inside docker or podman images.
// Host directories the tool reads or writes are bind mounted at the same
// path inside the container so that tool arguments need no rewriting.
package container

import (
	"context"
	"fmt"

	"github.com/pdiddy/research-ingest/internal/command"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Mount is a host directory made visible inside the container.
type Mount struct {
	Source string
	Target string
}

func (m Mount) flag() string {
	target := m.Target
	if target == "" {
		target = m.Source
	}
	return m.Source + ":" + target
}

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available(ctx context.Context) bool

	// ImageExists returns nil when the named image exists locally.
	ImageExists(ctx context.Context, image string) error

	// Run executes image with args as the container command, bind mounting
	// mounts, and returns the captured output.
	Run(ctx context.Context, image string, mounts []Mount, args []string) (command.Result, error)
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman differ only in binary name and the image check subcommand.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	runner        command.Runner
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	return command.Available(ctx, r.runner, r.bin, "info")
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if _, err := r.runner.Run(ctx, r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, mounts []Mount, args []string) (command.Result, error) {
	full := []string{"run", "--rm"}
	for _, m := range mounts {
		full = append(full, "-v", m.flag())
	}
	full = append(full, image)
	full = append(full, args...)

	res, err := r.runner.Run(ctx, r.bin, full...)
	if err != nil {
		return res, fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return res, nil
}

func newDockerRuntime(runner command.Runner) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		runner:        runner,
	}
}

func newPodmanRuntime(runner command.Runner) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		runner:        runner,
	}
}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime(ctx context.Context, runner command.Runner) (Runtime, error) {
	docker := newDockerRuntime(runner)
	if docker.Available(ctx) {
		return docker, nil
	}

	podman := newPodmanRuntime(runner)
	if podman.Available(ctx) {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
