// Package script renders the xEdit user script that registers converted videos
// in the mod's plugins.
package script

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"autovideo/internal/fileutil"
)

//go:embed userscript.pas.tmpl
var userScript string

var scriptTemplate = template.Must(template.New("userscript").Funcs(template.FuncMap{
	"pas": pascalString,
}).Parse(userScript))

// FileName is the script's name inside the output directory.
const FileName = "script.txt"

var formIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{1,8}$`)

// Info names the plugins and template records the script operates on.
type Info struct {
	ESPName        string `toml:"esp_name"`
	TVRecord       string `toml:"tv_record"`
	PRRecord       string `toml:"pr_record"`
	DriveInESPName string `toml:"di_esp_name"`
}

// Validate checks that required fields are present and form IDs are hex.
func (i Info) Validate() error {
	if strings.TrimSpace(i.ESPName) == "" {
		return errors.New("script esp_name is required")
	}
	for name, value := range map[string]string{"tv_record": i.TVRecord, "pr_record": i.PRRecord} {
		if !formIDPattern.MatchString(strings.TrimSpace(value)) {
			return fmt.Errorf("script %s must be a hexadecimal form ID, got %q", name, value)
		}
	}
	return nil
}

// Video is one converted video as the script sees it.
type Video struct {
	ID        string
	Name      string
	AudioFile string
	DriveIn   bool
}

// Request is everything needed to render a script.
type Request struct {
	Info    Info
	ModID   string
	ModName string
	Videos  []Video
}

type view struct {
	Info
	ModID          string
	ModName        string
	Videos         []Video
	DriveInVideos  []Video
	DriveInEnabled bool
}

// Render writes the script for req to w.
func Render(w io.Writer, req Request) error {
	if err := req.Info.Validate(); err != nil {
		return err
	}
	v := view{
		Info:           req.Info,
		ModID:          req.ModID,
		ModName:        req.ModName,
		Videos:         req.Videos,
		DriveInEnabled: strings.TrimSpace(req.Info.DriveInESPName) != "",
	}
	if v.DriveInEnabled {
		for _, video := range req.Videos {
			if video.DriveIn {
				v.DriveInVideos = append(v.DriveInVideos, video)
			}
		}
	}
	if err := scriptTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("render script: %w", err)
	}
	return nil
}

// WriteFile renders req and atomically replaces path.
func WriteFile(path string, req Request) error {
	if err := req.Info.Validate(); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Render(w, req)
	})
}

// pascalString quotes s as a Pascal string literal.
func pascalString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
