package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"autovideo/internal/logging"
)

func TestCreateAndRemove(t *testing.T) {
	base := t.TempDir()
	dir, err := Create(base, uuid.NewString())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	videoDir, err := dir.Video("INTRO       ")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if filepath.Base(videoDir) != "INTRO" {
		t.Fatalf("expected trimmed video dir, got %q", videoDir)
	}
	if info, err := os.Stat(filepath.Join(videoDir, "frames")); err != nil || !info.IsDir() {
		t.Fatalf("frames dir missing: %v", err)
	}
	if err := dir.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(dir.Root); !os.IsNotExist(err) {
		t.Fatalf("expected scratch root removed, got %v", err)
	}

	for _, id := range []string{"", "run-1", "../escape"} {
		if _, err := Create(base, id); err == nil {
			t.Fatalf("expected error for run id %q", id)
		}
	}
}

func TestIsRunDir(t *testing.T) {
	cases := map[string]bool{
		uuid.NewString():                         true,
		"output":                                 false,
		"logs":                                   false,
		"6ba7b8109dad11d180b400c04fd430c8":       false,
		"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}": false,
	}
	for name, want := range cases {
		if got := IsRunDir(name); got != want {
			t.Fatalf("IsRunDir(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCleanStale(t *testing.T) {
	base := t.TempDir()
	oldDir := filepath.Join(base, uuid.NewString())
	newDir := filepath.Join(base, uuid.NewString())
	userDir := filepath.Join(base, "output")
	lockFile := filepath.Join(base, "autovideo.lock")
	for _, d := range []string{oldDir, newDir, userDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(oldDir, "0001.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	userFile := filepath.Join(userDir, "Grid01.dds")
	if err := os.WriteFile(userFile, []byte("dds"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lockFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	for _, p := range []string{oldDir, userDir, lockFile} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	result := CleanStale(context.Background(), base, DefaultMaxAge, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only old run dir removed, got %v", result.Removed)
	}
	for _, keep := range []string{newDir, userFile, lockFile} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("%s removed: %v", keep, err)
		}
	}
}

func TestCleanStaleMissingBase(t *testing.T) {
	result := CleanStale(context.Background(), filepath.Join(t.TempDir(), "absent"), time.Hour, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestListDirectories(t *testing.T) {
	base := t.TempDir()
	runID := uuid.NewString()
	dir, err := Create(base, runID)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir.Root, "pad.mp4"), make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	dirs, err := ListDirectories(base)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != runID || dirs[0].Size != 2048 {
		t.Fatalf("unexpected dirs: %+v", dirs)
	}
}
