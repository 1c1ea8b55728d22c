package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"autovideo/internal/script"
	"autovideo/internal/templates"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	CacheDir    string `toml:"cache_dir"`
	LogDir      string `toml:"log_dir"`
	TemplateDir string `toml:"template_dir"`
}

// Video controls frame extraction.
type Video struct {
	FrameSize       int  `toml:"frame_size"`
	Framerate       int  `toml:"framerate"`
	KeepAspectRatio bool `toml:"keep_aspect_ratio"`
	ShortNames      bool `toml:"short_names"`
}

// Tools names the external executables.
type Tools struct {
	FFmpeg       string `toml:"ffmpeg"`
	FFprobe      string `toml:"ffprobe"`
	AudioEncoder string `toml:"audio_encoder"`
}

// Templates holds per-role template overrides. Empty fields use the
// template directory.
type Templates struct {
	Television    string `toml:"television"`
	Projector     string `toml:"projector"`
	DriveIn       string `toml:"drivein"`
	Plugin        string `toml:"plugin"`
	DriveInPlugin string `toml:"drivein_plugin"`
}

// Script controls xEdit script generation.
type Script struct {
	Enabled        bool   `toml:"enabled"`
	ESPName        string `toml:"esp_name"`
	TVRecord       string `toml:"tv_record"`
	PRRecord       string `toml:"pr_record"`
	DriveInESPName string `toml:"di_esp_name"`
}

// Batch controls multi-video behaviour.
type Batch struct {
	ContinueOnError bool `toml:"continue_on_error"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for autovideo.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Video     Video     `toml:"video"`
	Tools     Tools     `toml:"tools"`
	Templates Templates `toml:"templates"`
	Script    Script    `toml:"script"`
	Batch     Batch     `toml:"batch"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autovideo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TemplateSource returns where templates are read from.
func (c *Config) TemplateSource() templates.Source {
	overrides := make(map[templates.Role]string)
	for role, path := range map[templates.Role]string{
		templates.RoleTelevision:    c.Templates.Television,
		templates.RoleProjector:     c.Templates.Projector,
		templates.RoleDriveIn:       c.Templates.DriveIn,
		templates.RolePlugin:        c.Templates.Plugin,
		templates.RoleDriveInPlugin: c.Templates.DriveInPlugin,
	} {
		if path != "" {
			overrides[role] = path
		}
	}
	return templates.Source{Dir: c.Paths.TemplateDir, Overrides: overrides}
}

// SetTemplateOverride records an override for role, as parsed from a flag.
func (c *Config) SetTemplateOverride(role templates.Role, path string) error {
	expanded, err := expandPath(strings.TrimSpace(path))
	if err != nil {
		return fmt.Errorf("template %s: %w", role, err)
	}
	switch role {
	case templates.RoleTelevision:
		c.Templates.Television = expanded
	case templates.RoleProjector:
		c.Templates.Projector = expanded
	case templates.RoleDriveIn:
		c.Templates.DriveIn = expanded
	case templates.RolePlugin:
		c.Templates.Plugin = expanded
	case templates.RoleDriveInPlugin:
		c.Templates.DriveInPlugin = expanded
	default:
		return fmt.Errorf("unknown template role %q", role)
	}
	return nil
}

// ScriptInfo returns the script settings in the form the renderer expects.
func (c *Config) ScriptInfo() script.Info {
	return script.Info{
		ESPName:        c.Script.ESPName,
		TVRecord:       c.Script.TVRecord,
		PRRecord:       c.Script.PRRecord,
		DriveInESPName: c.Script.DriveInESPName,
	}
}

// LedgerPath returns the conversion ledger database path.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.LogDir, "autovideo.db")
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "autovideo.log")
}

// LockPath returns the run lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CacheDir, "autovideo.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "autovideo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/autovideo"
	}
	return filepath.Join(home, ".cache", "autovideo")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
