package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"autovideo/internal/config"
	"autovideo/internal/templates"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "autovideo", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".local", "share", "autovideo", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if want := filepath.Join(tempHome, ".cache", "autovideo"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) || filepath.Base(cfg.Paths.OutputDir) != "output" {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Video.FrameSize != 256 || cfg.Video.Framerate != 10 || !cfg.Video.KeepAspectRatio {
		t.Fatalf("unexpected video defaults: %+v", cfg.Video)
	}
	if cfg.Tools.AudioEncoder != "xWMAEncode" {
		t.Fatalf("unexpected audio encoder: %q", cfg.Tools.AudioEncoder)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.CacheDir, "autovideo.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.CacheDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadHonoursXDGCacheHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cacheBase := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheBase)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(cacheBase, "autovideo"); cfg.Paths.CacheDir != want {
		t.Fatalf("cache dir = %q, want %q", cfg.Paths.CacheDir, want)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "autovideo.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Video struct {
			FrameSize int `toml:"frame_size"`
			Framerate int `toml:"framerate"`
		} `toml:"video"`
		Templates struct {
			Plugin string `toml:"plugin"`
		} `toml:"templates"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "mod")
	custom.Video.FrameSize = 512
	custom.Video.Framerate = 20
	custom.Templates.Plugin = filepath.Join(tempDir, "Custom.esp")
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.OutputDir != custom.Paths.OutputDir {
		t.Fatalf("output dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Video.FrameSize != 512 || cfg.Video.Framerate != 20 {
		t.Fatalf("unexpected video config: %+v", cfg.Video)
	}
	if !cfg.Video.KeepAspectRatio {
		t.Fatal("unset fields should keep defaults")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q, want json", cfg.Logging.Format)
	}
	src := cfg.TemplateSource()
	if got := src.Path(templates.RolePlugin, ""); got != custom.Templates.Plugin {
		t.Fatalf("plugin template = %q", got)
	}
	if got := src.Path(templates.RoleTelevision, templates.TierSmall); got != filepath.Join(cfg.Paths.TemplateDir, "television_grid8.nif") {
		t.Fatalf("television template = %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autovideo.toml")
	if err := os.WriteFile(path, []byte("[video]\nframe_sise = 256\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "frame_size = 256") {
		t.Fatalf("sample config missing frame_size: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.CacheDir, "autovideo") {
		t.Fatalf("expected cache dir to contain autovideo, got %q", cfg.Paths.CacheDir)
	}

	// The sample must load as-is.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
}

func TestSetTemplateOverride(t *testing.T) {
	cfg := config.Default()
	if err := cfg.SetTemplateOverride(templates.RoleDriveInPlugin, "/tmp/di.esp"); err != nil {
		t.Fatalf("SetTemplateOverride: %v", err)
	}
	if cfg.TemplateSource().Overrides[templates.RoleDriveInPlugin] != filepath.Clean("/tmp/di.esp") {
		t.Fatalf("override not applied: %+v", cfg.TemplateSource().Overrides)
	}
	if err := cfg.SetTemplateOverride(templates.Role("radio"), "/tmp/x"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"frame size", func(c *config.Config) { c.Video.FrameSize = 300 }},
		{"zero framerate", func(c *config.Config) { c.Video.Framerate = 0 }},
		{"high framerate", func(c *config.Config) { c.Video.Framerate = 120 }},
		{"script without records", func(c *config.Config) { c.Script.Enabled = true; c.Script.ESPName = "a.esp" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"shared dirs", func(c *config.Config) { c.Paths.CacheDir = c.Paths.OutputDir }},
		{"output inside cache", func(c *config.Config) {
			c.Paths.CacheDir = "/srv/cache"
			c.Paths.OutputDir = "/srv/cache/output"
		}},
		{"logs inside cache", func(c *config.Config) {
			c.Paths.CacheDir = "/srv/cache"
			c.Paths.LogDir = "/srv/cache/logs/autovideo"
		}},
		{"templates inside cache", func(c *config.Config) {
			c.Paths.CacheDir = "/srv/cache"
			c.Paths.TemplateDir = "/srv/cache/templates"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.Paths.CacheDir = "/srv/cache"
	cfg.Paths.OutputDir = "/srv/cache-output"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sibling with shared prefix rejected: %v", err)
	}

	cfg = config.Default()
	cfg.Script = config.Script{Enabled: true, ESPName: "Tapes.esp", TVRecord: "0001A2B3", PRRecord: "0001A2B4"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid script config rejected: %v", err)
	}
}
