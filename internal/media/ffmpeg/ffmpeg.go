// Package ffmpeg wraps the ffmpeg invocations used to prepare a video for
// atlas packing.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"autovideo/internal/tools"
)

// PadFilter letterboxes or pillarboxes the input to a 4:3 frame.
const PadFilter = `pad=max(iw\,ih*4/3):max(ih\,iw*3/4):(ow-iw)/2:(oh-ih)/2`

// FramePattern names extracted frames so lexical order equals decode order.
const FramePattern = "%04d.png"

// Client runs ffmpeg.
type Client struct {
	binary string
	runner *tools.Runner
}

// New returns a Client for binary (defaults to "ffmpeg").
func New(binary string, runner *tools.Runner) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if runner == nil {
		runner = tools.NewRunner()
	}
	return &Client{binary: binary, runner: runner}
}

// Pad writes a 4:3 copy of input to output, keeping the audio stream.
func (c *Client) Pad(ctx context.Context, input, output string) error {
	if input == "" || output == "" {
		return errors.New("ffmpeg pad: input and output required")
	}
	res := c.runner.Run(ctx, tools.Invocation{
		Tool:   "ffmpeg",
		Binary: c.binary,
		Action: "pad video",
		Input:  input,
		Args: []string{
			"-hide_banner", "-loglevel", "error",
			"-i", input,
			"-c:a", "copy",
			"-vf", PadFilter,
			"-crf", "18",
			"-y", output,
		},
	})
	return res.Err()
}

// ExtractRequest describes one frame/audio extraction.
type ExtractRequest struct {
	Input string
	// FrameDir receives FramePattern numbered PNG files.
	FrameDir  string
	FrameSize int
	FPS       int
	// AudioPath receives a mono wav when set.
	AudioPath string
}

// Extract decodes Input into square frames at the requested rate and,
// when AudioPath is set, a mono wav track.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) error {
	if req.Input == "" || req.FrameDir == "" {
		return errors.New("ffmpeg extract: input and frame directory required")
	}
	if req.FrameSize <= 0 || req.FPS <= 0 {
		return fmt.Errorf("ffmpeg extract: invalid frame size %d or fps %d", req.FrameSize, req.FPS)
	}
	res := c.runner.Run(ctx, tools.Invocation{
		Tool:   "ffmpeg",
		Binary: c.binary,
		Action: "convert video",
		Input:  req.Input,
		Args:   extractArgs(req),
	})
	return res.Err()
}

func extractArgs(req ExtractRequest) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", req.Input,
		"-filter:v", fmt.Sprintf("scale=%d:%d", req.FrameSize, req.FrameSize),
		"-r", fmt.Sprintf("%d", req.FPS),
		"-f", "image2",
		"-c:v", "png",
		"-y", filepath.Join(req.FrameDir, FramePattern),
	}
	if req.AudioPath != "" {
		args = append(args, "-ac", "1", "-y", req.AudioPath)
	}
	return args
}
