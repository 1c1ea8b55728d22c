package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"autovideo/internal/config"
	"autovideo/internal/templates"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed returns the non-optional checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes every applicable check for cfg. Directories are expected to
// exist already (see config.EnsureDirectories).
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	return append(results, CheckTemplates(cfg.TemplateSource())...)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTemplates reports which template files are present. The plugin and the
// small television and projector meshes are required; the rest only limit
// which videos can be converted.
func CheckTemplates(src templates.Source) []Result {
	type want struct {
		role     templates.Role
		tier     templates.Tier
		optional bool
	}
	wants := []want{
		{templates.RolePlugin, "", false},
		{templates.RoleTelevision, templates.TierSmall, false},
		{templates.RoleProjector, templates.TierSmall, false},
		{templates.RoleTelevision, templates.TierLarge, true},
		{templates.RoleProjector, templates.TierLarge, true},
		{templates.RoleDriveIn, templates.TierSmall, true},
		{templates.RoleDriveInPlugin, "", true},
	}

	results := make([]Result, 0, len(wants))
	for _, w := range wants {
		name := "Template " + string(w.role)
		if w.tier != "" {
			name += " " + string(w.tier)
		}
		path := src.Path(w.role, w.tier)
		result := Result{Name: name, Optional: w.optional}
		if err := unix.Access(path, unix.R_OK); err != nil || !src.Available(w.role, w.tier) {
			result.Detail = fmt.Sprintf("%s (missing)", path)
		} else {
			result.Passed = true
			result.Detail = path
		}
		results = append(results, result)
	}
	return results
}
