package templates

import (
	"errors"
	"fmt"

	"autovideo/internal/atlas"
	"autovideo/internal/binpatch"
	"autovideo/internal/identifier"
)

// MeshTiming returns the value written to each slot marker: a full atlas time
// for slots before the last, the hold time for the last, 0 beyond it.
func MeshTiming(layout atlas.Layout, slot int) float32 {
	switch {
	case slot < 1 || slot > layout.Atlases:
		return 0
	case slot == layout.Atlases:
		return layout.HoldSeconds()
	default:
		return atlas.FullSeconds()
	}
}

// Frequency converts the capture rate into the controller frequency relative
// to the 10 fps baseline timings.
func Frequency(fps int) float32 {
	return float32(fps) / atlas.BaselineFPS
}

// PatchMesh rewrites a mesh template for one video.
func PatchMesh(tmpl []byte, mod identifier.Mod, video identifier.Video, layout atlas.Layout, fps int) ([]byte, error) {
	if err := checkWidths(); err != nil {
		return nil, err
	}
	out, _, err := binpatch.ReplaceAll(tmpl, TokenModID, mod.ID)
	if err != nil {
		return nil, fmt.Errorf("mesh mod id: %w", err)
	}
	if out, _, err = binpatch.ReplaceAll(out, TokenVideoID, video.ID); err != nil {
		return nil, fmt.Errorf("mesh video id: %w", err)
	}
	for slot := 1; slot <= atlas.MaxAtlases; slot++ {
		out, _ = binpatch.ReplaceFloat(out, SlotMarker(slot), MeshTiming(layout, slot))
	}
	out, _ = binpatch.ReplaceFloat(out, FrequencyMarker, Frequency(fps))
	return out, nil
}

// Plugin accumulates per-video substitutions into one plugin buffer. Each
// video consumes the first remaining occurrence of every per-video token.
type Plugin struct {
	data   []byte
	videos int
}

// NewPlugin applies the mod-level substitutions to a plugin template.
func NewPlugin(tmpl []byte, mod identifier.Mod) (*Plugin, error) {
	if err := checkWidths(); err != nil {
		return nil, err
	}
	out, _, err := binpatch.ReplaceAll(tmpl, TokenModID, mod.ID)
	if err != nil {
		return nil, fmt.Errorf("plugin mod id: %w", err)
	}
	if out, _, err = binpatch.ReplaceAll(out, TokenModTitle, mod.Title); err != nil {
		return nil, fmt.Errorf("plugin mod title: %w", err)
	}
	return &Plugin{data: out}, nil
}

// ErrNoSlot is returned when a plugin template has no unused video entry left.
var ErrNoSlot = errors.New("plugin template has no free video slot")

// AddVideo fills the next video slot.
func (p *Plugin) AddVideo(video identifier.Video, soundFile string) error {
	subs := []struct {
		token, value string
	}{
		{TokenVideoID, video.ID},
		{TokenVideoTitle, video.Title},
		{TokenSoundFile, soundFile},
	}
	next := p.data
	for i, s := range subs {
		out, n, err := binpatch.ReplaceFirst(next, s.token, s.value)
		if err != nil {
			return fmt.Errorf("plugin %s: %w", s.token, err)
		}
		if n == 0 && i == 0 {
			return fmt.Errorf("%w (video %d)", ErrNoSlot, p.videos+1)
		}
		next = out
	}
	p.data = next
	p.videos++
	return nil
}

// Videos returns the number of videos added.
func (p *Plugin) Videos() int { return p.videos }

// Bytes returns the patched plugin.
func (p *Plugin) Bytes() []byte { return p.data }
