package deps

import (
	"os"
	"path/filepath"
	"testing"

	"autovideo/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected unset status: %#v", results[2])
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("MissingRequired = %#v", missing)
	}
}

func TestRequirementsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.AudioEncoder = ""
	reqs := Requirements(&cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "ffmpeg" || reqs[1].Command != "ffprobe" {
		t.Fatalf("unexpected commands: %#v", reqs)
	}
	if !reqs[2].Optional {
		t.Fatal("audio encoder must be optional")
	}
	// An unset optional encoder never blocks a run.
	if missing := MissingRequired(CheckBinaries(reqs[2:])); len(missing) != 0 {
		t.Fatalf("optional encoder reported missing: %#v", missing)
	}
}
