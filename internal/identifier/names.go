package identifier

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Token widths shared with the binary templates.
const (
	ModIDWidth      = 10
	VideoIDWidth    = 12
	ModTitleWidth   = 24
	VideoTitleWidth = 32
	// SoundFileWidth covers the video ID plus a four byte extension.
	SoundFileWidth = VideoIDWidth + 4
)

// ErrEmptyName is returned when a name has no usable characters after folding.
var ErrEmptyName = errors.New("name has no usable characters")

// Mod carries the identifiers derived from the user supplied mod name.
type Mod struct {
	// Name is the folded display name.
	Name string
	// ID is the X-padded identifier used in paths and editor IDs.
	ID string
	// Title is the space-padded leading form shown in the plugin header.
	Title string
}

// NewMod derives the mod identifiers. Names longer than a token are cut to the
// token width before padding.
func NewMod(name string) (Mod, error) {
	display := truncate(Fold(name), ModTitleWidth)
	compact := truncate(Compact(name), ModIDWidth)
	if display == "" || compact == "" {
		return Mod{}, fmt.Errorf("mod name %q: %w", name, ErrEmptyName)
	}
	return Mod{
		Name:  display,
		ID:    CrossRef(compact, ModIDWidth),
		Title: LeadingSpace(display, ModTitleWidth),
	}, nil
}

var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// FileName returns Name with filesystem-unsafe characters replaced. Slashes,
// backslashes, colons and asterisks become dashes; other unsafe characters
// are removed.
func (m Mod) FileName() string {
	name := strings.TrimSpace(fileNameReplacer.Replace(m.Name))
	if name == "" {
		return m.ID
	}
	return name
}

// Video carries the identifiers derived for one video of a batch.
type Video struct {
	Name  string
	ID    string
	Title string
}

// VideoOptions controls how a video's identifiers are chosen.
type VideoOptions struct {
	// DisplayName overrides the name derived from the file stem.
	DisplayName string
	// ShortNames derives IDs from the 1-based batch position ("V01").
	ShortNames bool
	// Index is the 0-based position of the video in its batch.
	Index int
}

// NewVideo derives the identifiers for the video at sourcePath.
func NewVideo(sourcePath string, opts VideoOptions) (Video, error) {
	base := strings.TrimSpace(opts.DisplayName)
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}
	display := truncate(Fold(base), VideoTitleWidth)
	if display == "" {
		return Video{}, fmt.Errorf("video name %q: %w", base, ErrEmptyName)
	}

	var compact string
	if opts.ShortNames {
		compact = fmt.Sprintf("V%02d", opts.Index+1)
	} else {
		compact = truncate(Compact(base), VideoIDWidth)
	}
	if compact == "" {
		return Video{}, fmt.Errorf("video name %q: %w", base, ErrEmptyName)
	}
	return Video{
		Name:  display,
		ID:    CrossRef(compact, VideoIDWidth),
		Title: TrailingSpace(display, VideoTitleWidth),
	}, nil
}

// SoundFile returns the audio file name for the given extension (".xwm" or ".wav").
func (v Video) SoundFile(ext string) string {
	return v.ID + ext
}

// CheckUnique reports an error when two videos share an ID.
func CheckUnique(videos []Video) error {
	seen := make(map[string]int, len(videos))
	for i, v := range videos {
		if prev, ok := seen[v.ID]; ok {
			return fmt.Errorf("videos %d and %d both map to identifier %q; rename one or use short names", prev+1, i+1, v.ID)
		}
		seen[v.ID] = i
	}
	return nil
}

func truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	if len(s) > width {
		s = strings.TrimSpace(s[:width])
	}
	return s
}
