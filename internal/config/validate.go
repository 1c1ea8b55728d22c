package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateScript(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Paths.OutputDir == c.Paths.CacheDir {
		return errors.New("paths.cache_dir must differ from paths.output_dir")
	}
	for _, p := range []struct{ key, dir string }{
		{"paths.output_dir", c.Paths.OutputDir},
		{"paths.log_dir", c.Paths.LogDir},
		{"paths.template_dir", c.Paths.TemplateDir},
	} {
		if within(c.Paths.CacheDir, p.dir) {
			return fmt.Errorf("%s must not be inside paths.cache_dir (%s)", p.key, c.Paths.CacheDir)
		}
	}
	return nil
}

// within reports whether dir is base or lies beneath it.
func within(base, dir string) bool {
	if base == "" || dir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(dir))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (c *Config) validateVideo() error {
	if !slices.Contains(FrameSizes, c.Video.FrameSize) {
		return fmt.Errorf("video.frame_size must be one of %v, got %d", FrameSizes, c.Video.FrameSize)
	}
	if c.Video.Framerate <= 0 || c.Video.Framerate > maxFramerate {
		return fmt.Errorf("video.framerate must be between 1 and %d, got %d", maxFramerate, c.Video.Framerate)
	}
	return nil
}

func (c *Config) validateScript() error {
	if !c.Script.Enabled {
		return nil
	}
	if err := c.ScriptInfo().Validate(); err != nil {
		return fmt.Errorf("script.enabled is true but %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
}
