package config

import (
	"fmt"
	"strings"
)

// Normalize expands paths and fills empty values with defaults. Load calls it;
// the CLI calls it again after applying flag overrides.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTemplates(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeScript()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TemplateDir) == "" {
		c.Paths.TemplateDir = defaultTemplateDir
	}
	if c.Paths.TemplateDir, err = expandPath(c.Paths.TemplateDir); err != nil {
		return fmt.Errorf("paths.template_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTemplates() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"templates.television", &c.Templates.Television},
		{"templates.projector", &c.Templates.Projector},
		{"templates.drivein", &c.Templates.DriveIn},
		{"templates.plugin", &c.Templates.Plugin},
		{"templates.drivein_plugin", &c.Templates.DriveInPlugin},
	}
	for _, f := range fields {
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	// An empty audio encoder is meaningful: keep wav output.
	c.Tools.AudioEncoder = strings.TrimSpace(c.Tools.AudioEncoder)
}

func (c *Config) normalizeScript() {
	c.Script.ESPName = strings.TrimSpace(c.Script.ESPName)
	c.Script.TVRecord = strings.ToUpper(strings.TrimSpace(c.Script.TVRecord))
	c.Script.PRRecord = strings.ToUpper(strings.TrimSpace(c.Script.PRRecord))
	c.Script.DriveInESPName = strings.TrimSpace(c.Script.DriveInESPName)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
