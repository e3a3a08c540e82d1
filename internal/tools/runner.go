// Package tools wraps the external programs the pipeline shells out to:
// ImageMagick for resizing and dimension probing, file(1) for media-type
// probing. Everything goes through the Runner interface so tests can
// substitute deterministic fakes without spawning subprocesses.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner abstracts command execution to enable testing without real
// subprocesses. The context cancels in-flight invocations.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("running %s: %w", name, err)
	}
	return stdout.String(), stderr.String(), nil
}
