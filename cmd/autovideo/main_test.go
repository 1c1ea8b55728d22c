package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"autovideo/internal/config"
	"autovideo/internal/identifier"
	"autovideo/internal/ledger"
	"autovideo/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Script = config.Script{Enabled: true, ESPName: "Tapes.esp", TVRecord: "0001A2B3", PRRecord: "0001A2B4"}
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, data)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
}

func TestCheckReportsMissingTemplates(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail without templates")
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Template plugin")
	requireContains(t, out, "missing (optional)")
}

func TestHistoryAndScriptFromLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No conversions recorded")

	mod, err := identifier.NewMod("VHS Tapes")
	if err != nil {
		t.Fatal(err)
	}
	store, err := ledger.Open(context.Background(), env.cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	for _, name := range []string{"Intro", "Credits"} {
		video, err := identifier.NewVideo(name+".mp4", identifier.VideoOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Record(context.Background(), ledger.Entry{
			RunID: "run-1", ModID: mod.ID, ModName: mod.Name,
			VideoID: video.ID, VideoName: video.Name,
			Atlases: 3, HoldSeconds: 1.5, AudioFile: video.SoundFile(".xwm"), DriveIn: true,
			FrameSize: 256, FPS: 10,
		}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	store.Close()

	out, _, err = runCLI(t, []string{"history", "--mod", "VHS Tapes"}, env.configPath)
	if err != nil {
		t.Fatalf("history --mod: %v", err)
	}
	requireContains(t, out, "Credits")
	requireContains(t, out, "256px @ 10fps")

	out, _, err = runCLI(t, []string{"script", "--mod", "VHS Tapes"}, env.configPath)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	requireContains(t, out, "Wrote script for 2 videos")
	data, err := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, "script.txt"))
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	requireContains(t, string(data), "Intro")

	if _, _, err := runCLI(t, []string{"script", "--mod", "Unknown Mod"}, env.configPath); err == nil {
		t.Fatal("expected error for mod without conversions")
	}
}

func TestConvertRejectsInvalidOptions(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, video, []byte("not a video"))

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"video name with batch", []string{"convert", "--mod", "M", "--video-name", "X", video, video}, "exactly one input"},
		{"bad size", []string{"convert", "--mod", "M", "--size", "300", video}, "frame_size"},
		{"bad template", []string{"convert", "--mod", "M", "--template", "radio=/x.nif", video}, "unknown template role"},
		{"template without path", []string{"convert", "--mod", "M", "--template", "plugin", video}, "ROLE=PATH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args, env.configPath)
			if err == nil {
				t.Fatal("expected error")
			}
			requireContains(t, err.Error(), tc.want)
		})
	}
}
