package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
)

// Result is the captured outcome of a service manager command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns the most informative text of the result.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes a command. A non-zero exit status is reported in Result,
// not as an error; errors mean the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}

// commandError turns a failed command into a classified error.
func commandError(op string, res Result) error {
	msg := res.Output()
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", res.ExitCode)
	}
	if isNotFoundText(msg) {
		return apperr.New(op, apperr.ErrNotFound, "%s", msg)
	}
	return apperr.Classify(op, errors.New(msg))
}
