package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"autovideo/internal/tools"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameRate string `json:"r_frame_rate"`
	Channels  int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Prober runs ffprobe.
type Prober struct {
	binary string
	runner *tools.Runner
}

// New returns a Prober for binary (defaults to "ffprobe").
func New(binary string, runner *tools.Runner) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if runner == nil {
		runner = tools.NewRunner()
	}
	return &Prober{binary: binary, runner: runner}
}

// Inspect executes ffprobe against path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	res := p.runner.Run(ctx, tools.Invocation{
		Tool:   "ffprobe",
		Binary: p.binary,
		Action: "probe video for audio track",
		Input:  path,
		Args:   []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path},
	})
	if err := res.Err(); err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal(res.Stdout, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse %s: %w", path, err)
	}
	return result, nil
}

// HasAudio reports whether path carries at least one audio stream.
func (p *Prober) HasAudio(ctx context.Context, path string) (bool, error) {
	result, err := p.Inspect(ctx, path)
	if err != nil {
		return false, err
	}
	return result.AudioStreamCount() > 0, nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return r.countType("video")
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return r.countType("audio")
}

func (r Result) countType(kind string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, falling back to
// the longest stream. Returns 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if d := parseFloat(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// EstimatedFrames returns the number of frames extraction at fps will produce.
func (r Result) EstimatedFrames(fps int) int {
	d := r.DurationSeconds()
	if d <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(d * float64(fps)))
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
