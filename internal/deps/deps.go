// Package deps reports whether the external tools autovideo shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"autovideo/internal/config"
)

// Requirement defines an external dependency autovideo relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		if path != cmd {
			status.Detail = path
		}
		results = append(results, status)
	}
	return results
}

// Requirements lists the tools a conversion run needs for cfg.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for padding and frame extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for audio and duration inspection",
		},
		{
			Name:        "xWMAEncode",
			Command:     cfg.Tools.AudioEncoder,
			Description: "Converts audio to xwm; wav is shipped when missing",
			Optional:    true,
		},
	}
}

// MissingRequired returns the statuses of unavailable non-optional tools.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
