package atlas

import (
	"errors"
	"fmt"
	"math"
)

const (
	// CellsPerSide is the number of frame cells along each atlas edge.
	CellsPerSide = 16
	// Capacity is the number of frames one atlas holds.
	Capacity = CellsPerSide * CellsPerSide
	// MaxAtlases is the largest atlas count a video may produce.
	MaxAtlases = 24
	// BaselineFPS is the frame rate at which atlas timings are expressed.
	BaselineFPS = 10
)

// ErrNoFrames is returned when a video decoded to zero frames.
var ErrNoFrames = errors.New("no frames decoded")

// Layout describes how a frame sequence is split across atlases.
type Layout struct {
	Frames   int
	Atlases  int
	LastFill int
}

// HoldSeconds is how long the final atlas stays on screen at the baseline rate.
func (l Layout) HoldSeconds() float32 {
	return float32(l.LastFill) / BaselineFPS
}

// FullSeconds is the display time of a completely filled atlas at the baseline rate.
func FullSeconds() float32 {
	return float32(Capacity) / BaselineFPS
}

// Fill returns the number of frames placed in the atlas at 1-based index.
func (l Layout) Fill(index int) int {
	switch {
	case index < 1 || index > l.Atlases:
		return 0
	case index == l.Atlases:
		return l.LastFill
	default:
		return Capacity
	}
}

// Plan computes the layout for frameCount frames and validates it against
// MaxAtlases. fps only affects the duration reported by a CapacityError.
func Plan(frameCount, fps int) (Layout, error) {
	if frameCount <= 0 {
		return Layout{}, ErrNoFrames
	}
	atlases := (frameCount + Capacity - 1) / Capacity
	if atlases > MaxAtlases {
		return Layout{}, &CapacityError{Atlases: atlases, FPS: fps}
	}
	return Layout{
		Frames:   frameCount,
		Atlases:  atlases,
		LastFill: frameCount - (atlases-1)*Capacity,
	}, nil
}

// PlanDuration estimates the layout for a video of the given length before it
// is decoded.
func PlanDuration(seconds float64, fps int) (Layout, error) {
	if seconds <= 0 || fps <= 0 {
		return Layout{}, ErrNoFrames
	}
	return Plan(int(math.Ceil(seconds*float64(fps))), fps)
}

// CapacityError reports a video that needs more than MaxAtlases atlases.
type CapacityError struct {
	Video   string
	Atlases int
	FPS     int
}

func (e *CapacityError) Error() string {
	name := e.Video
	if name == "" {
		name = "input"
	}
	return fmt.Sprintf("Video %s is longer than %s (%d grids). Reduce FPS or use a shorter video.",
		name, FormatDuration(MaxDuration(e.FPS)), MaxAtlases)
}

// MaxDuration is the longest video, in seconds, that fits in MaxAtlases at fps.
func MaxDuration(fps int) float64 {
	maxTime := float64(MaxAtlases*Capacity) / BaselineFPS
	if fps > 0 && fps != BaselineFPS {
		maxTime = maxTime / float64(fps) * BaselineFPS
	}
	return maxTime
}

// FormatDuration renders seconds as MM:SS.s.
func FormatDuration(seconds float64) string {
	minutes := int(seconds / 60)
	rest := math.Mod(seconds, 60)
	return fmt.Sprintf("%02d:%04.1f", minutes, rest)
}
