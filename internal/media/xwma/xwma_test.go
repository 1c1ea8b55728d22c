package xwma

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"autovideo/internal/tools"
)

type stubExecutor struct {
	write []byte
	err   error
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	if s.write != nil {
		if err := os.WriteFile(args[1], s.write, 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, s.err
}

func TestEncodeSuccess(t *testing.T) {
	dir := t.TempDir()
	wav, xwm := filepath.Join(dir, "a.wav"), filepath.Join(dir, "a.xwm")
	enc := New("xWMAEncode", tools.NewRunner(tools.WithExecutor(&stubExecutor{write: []byte("RIFF")})))
	if err := enc.Encode(context.Background(), wav, xwm); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := os.Stat(xwm); err != nil {
		t.Fatalf("xwm missing: %v", err)
	}
}

func TestEncodeFallbacks(t *testing.T) {
	cases := []struct {
		name string
		bin  string
		stub *stubExecutor
	}{
		{name: "not configured", bin: "", stub: &stubExecutor{}},
		{name: "missing binary", bin: "xWMAEncode", stub: &stubExecutor{err: exec.ErrNotFound}},
		{name: "no output", bin: "xWMAEncode", stub: &stubExecutor{}},
		{name: "empty output", bin: "xWMAEncode", stub: &stubExecutor{write: []byte{}}},
		{name: "nonzero exit", bin: "xWMAEncode", stub: &stubExecutor{write: []byte("partial"), err: errors.New("exit status 2")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			xwm := filepath.Join(dir, "a.xwm")
			enc := New(tc.bin, tools.NewRunner(tools.WithExecutor(tc.stub)))
			err := enc.Encode(context.Background(), filepath.Join(dir, "a.wav"), xwm)
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("expected ErrUnsupported, got %v", err)
			}
			if _, statErr := os.Stat(xwm); !errors.Is(statErr, os.ErrNotExist) {
				t.Fatalf("expected no xwm left behind, stat err = %v", statErr)
			}
		})
	}
}
