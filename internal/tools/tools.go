package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Outcome classifies how an invocation ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMissing
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMissing:
		return "missing"
	default:
		return "failed"
	}
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

// Invocation describes one external command.
type Invocation struct {
	// Tool is the display name ("ffmpeg").
	Tool string
	// Binary is the executable to run; defaults to Tool.
	Binary string
	// Action describes the step for error messages ("pad video").
	Action string
	// Input identifies what the command worked on, usually a path.
	Input string
	Args  []string
}

// Result is the classified outcome of an invocation.
type Result struct {
	Invocation Invocation
	Outcome    Outcome
	ExitCode   int
	Stdout     []byte
	Stderr     string
	cause      error
}

// Err converts a non-OK result into a typed error.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeOK:
		return nil
	case OutcomeMissing:
		return &MissingError{Tool: r.Invocation.Tool, Err: r.cause}
	default:
		return &ExitError{
			Tool:   r.Invocation.Tool,
			Action: r.Invocation.Action,
			Input:  r.Invocation.Input,
			Code:   r.ExitCode,
			Stderr: r.Stderr,
			Err:    r.cause,
		}
	}
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner executes invocations through an Executor.
type Runner struct {
	exec Executor
}

// NewRunner constructs a Runner backed by os/exec unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{exec: commandExecutor{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes inv and classifies the result. It never returns a Go error
// directly; use Result.Err.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	binary := strings.TrimSpace(inv.Binary)
	if binary == "" {
		binary = inv.Tool
	}
	stdout, stderr, err := r.exec.Run(ctx, binary, inv.Args)
	res := Result{
		Invocation: inv,
		Stdout:     stdout,
		Stderr:     tail(string(stderr), stderrTailLines),
	}
	if err == nil {
		res.Outcome = OutcomeOK
		return res
	}
	res.cause = err
	if isNotFound(err) {
		res.Outcome = OutcomeMissing
		return res
	}
	res.Outcome = OutcomeFailed
	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.cause = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return res
}

func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

const stderrTailLines = 8

func tail(s string, lines int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
