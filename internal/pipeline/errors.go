package pipeline

import (
	"errors"

	"autovideo/internal/atlas"
	"autovideo/internal/templates"
	"autovideo/internal/tools"
)

// errorHint suggests a next step for a failed video.
func errorHint(err error) string {
	var (
		missing  *tools.MissingError
		exit     *tools.ExitError
		capacity *atlas.CapacityError
	)
	switch {
	case errors.As(err, &missing):
		return "install " + missing.Tool + " or set its path under [tools]"
	case errors.As(err, &capacity):
		return "lower the framerate or trim the video"
	case errors.Is(err, atlas.ErrNoFrames):
		return "check that the source contains a video stream"
	case errors.Is(err, templates.ErrNotFound):
		return "check paths.template_dir or the [templates] overrides"
	case errors.Is(err, templates.ErrNoSlot):
		return "use a plugin template with more video entries or split the batch"
	case errors.As(err, &exit):
		return "inspect the " + exit.Tool + " output in the log"
	default:
		return "check logs for details"
	}
}
