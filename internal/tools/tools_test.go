package tools_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"autovideo/internal/tools"
)

type stubExecutor struct {
	stdout []byte
	stderr []byte
	err    error
	binary string
	args   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	s.binary = binary
	s.args = append([]string(nil), args...)
	return s.stdout, s.stderr, s.err
}

func TestRunOK(t *testing.T) {
	stub := &stubExecutor{stdout: []byte("stream\n")}
	runner := tools.NewRunner(tools.WithExecutor(stub))
	res := runner.Run(context.Background(), tools.Invocation{Tool: "ffprobe", Args: []string{"-v", "error"}})
	if res.Outcome != tools.OutcomeOK {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if err := res.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if stub.binary != "ffprobe" {
		t.Fatalf("binary defaulted to %q", stub.binary)
	}
	if string(res.Stdout) != "stream\n" {
		t.Fatalf("stdout = %q", res.Stdout)
	}
}

func TestRunMissingBinary(t *testing.T) {
	stub := &stubExecutor{err: &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}}
	runner := tools.NewRunner(tools.WithExecutor(stub))
	res := runner.Run(context.Background(), tools.Invocation{Tool: "ffmpeg", Binary: "/opt/ffmpeg"})
	if res.Outcome != tools.OutcomeMissing {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	var missing *tools.MissingError
	if !errors.As(res.Err(), &missing) {
		t.Fatalf("expected MissingError, got %T", res.Err())
	}
	if !strings.Contains(missing.Error(), "ffmpeg is not installed!") {
		t.Fatalf("message = %q", missing.Error())
	}
	if !errors.Is(res.Err(), exec.ErrNotFound) {
		t.Fatal("expected wrapped exec.ErrNotFound")
	}
	if stub.binary != "/opt/ffmpeg" {
		t.Fatalf("binary = %q", stub.binary)
	}
}

func TestRunFailureCarriesContext(t *testing.T) {
	stderr := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		stderr = append(stderr, fmt.Sprintf("line %d", i))
	}
	stub := &stubExecutor{stderr: []byte(strings.Join(stderr, "\n")), err: errors.New("exit status 1")}
	runner := tools.NewRunner(tools.WithExecutor(stub))
	res := runner.Run(context.Background(), tools.Invocation{Tool: "ffmpeg", Action: "convert video", Input: "clip.mp4"})
	if res.Outcome != tools.OutcomeFailed {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	var exitErr *tools.ExitError
	if !errors.As(res.Err(), &exitErr) {
		t.Fatalf("expected ExitError, got %T", res.Err())
	}
	msg := exitErr.Error()
	if !strings.HasPrefix(msg, "failed to convert video: clip.mp4") {
		t.Fatalf("message = %q", msg)
	}
	if strings.Contains(msg, "line 11") || !strings.Contains(msg, "line 19") {
		t.Fatalf("expected stderr tail only, got %q", msg)
	}
}

func TestRunCancelledWrapsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubExecutor{err: errors.New("signal: killed")}
	res := tools.NewRunner(tools.WithExecutor(stub)).Run(ctx, tools.Invocation{Tool: "ffmpeg"})
	if !errors.Is(res.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err())
	}
}

func TestCommandExecutorRealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-tool")
	body := "#!/bin/sh\necho out\necho boom >&2\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	res := tools.NewRunner().Run(context.Background(), tools.Invocation{Tool: "fake", Binary: script})
	if res.Outcome != tools.OutcomeFailed || res.ExitCode != 3 {
		t.Fatalf("outcome = %v code = %d", res.Outcome, res.ExitCode)
	}
	if strings.TrimSpace(string(res.Stdout)) != "out" || res.Stderr != "boom" {
		t.Fatalf("stdout = %q stderr = %q", res.Stdout, res.Stderr)
	}

	missing := tools.NewRunner().Run(context.Background(), tools.Invocation{Tool: "fake", Binary: filepath.Join(dir, "absent")})
	if missing.Outcome != tools.OutcomeMissing {
		t.Fatalf("expected missing outcome, got %v", missing.Outcome)
	}
}
