package templates

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"autovideo/internal/atlas"
	"autovideo/internal/identifier"
)

func floatBytes(v float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return b[:]
}

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func mustMod(t *testing.T, name string) identifier.Mod {
	t.Helper()
	m, err := identifier.NewMod(name)
	if err != nil {
		t.Fatalf("NewMod: %v", err)
	}
	return m
}

func mustVideo(t *testing.T, path string, index int) identifier.Video {
	t.Helper()
	v, err := identifier.NewVideo(path, identifier.VideoOptions{Index: index})
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	return v
}

func TestTierFor(t *testing.T) {
	cases := map[int]Tier{1: TierSmall, 8: TierSmall, 9: TierLarge, 24: TierLarge}
	for atlases, want := range cases {
		if got := TierFor(atlases); got != want {
			t.Fatalf("TierFor(%d) = %s, want %s", atlases, got, want)
		}
	}
}

func TestTokenWidthsMatchIdentifiers(t *testing.T) {
	if err := checkWidths(); err != nil {
		t.Fatal(err)
	}
}

func TestSourcePath(t *testing.T) {
	src := Source{Dir: "/tpl", Overrides: map[Role]string{RolePlugin: "/mine/Custom.esp"}}
	cases := []struct {
		role Role
		tier Tier
		want string
	}{
		{RoleTelevision, TierSmall, filepath.Join("/tpl", "television_grid8.nif")},
		{RoleProjector, TierLarge, filepath.Join("/tpl", "projector_grid24.nif")},
		{RoleDriveInPlugin, "", filepath.Join("/tpl", "drivein_plugin.esp")},
		{RolePlugin, "", "/mine/Custom.esp"},
	}
	for _, tc := range cases {
		if got := src.Path(tc.role, tc.tier); got != tc.want {
			t.Fatalf("Path(%s, %s) = %q, want %q", tc.role, tc.tier, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" DriveIn "); err != nil || r != RoleDriveIn {
		t.Fatalf("ParseRole = %q, %v", r, err)
	}
	if _, err := ParseRole("radio"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestCacheLoadsOnceAndClones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "television_grid8.nif")
	if err := os.WriteFile(path, []byte("NIF AVMODIDENT"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := NewCache(Source{Dir: dir})
	first, err := cache.Get(RoleTelevision, TierSmall)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first[0] = 'X'

	// Later edits to the file are not observed within one cache.
	if err := os.WriteFile(path, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := cache.Get(RoleTelevision, TierSmall)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(second) != "NIF AVMODIDENT" {
		t.Fatalf("second = %q", second)
	}

	if _, err := cache.Get(RoleProjector, TierLarge); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchMeshSlotsForSingleAtlas(t *testing.T) {
	var tmpl []byte
	tmpl = append(tmpl, []byte("hdr AVMODIDENT/AVVIDEOIDENT.dds ")...)
	slotOffsets := make(map[int]int)
	for slot := 1; slot <= atlas.MaxAtlases; slot++ {
		slotOffsets[slot] = len(tmpl)
		tmpl = append(tmpl, floatBytes(SlotMarker(slot))...)
		tmpl = append(tmpl, 0xEE)
	}
	freqOffset := len(tmpl)
	tmpl = append(tmpl, floatBytes(FrequencyMarker)...)
	original := bytes.Clone(tmpl)

	mod := mustMod(t, "My Mod")
	video := mustVideo(t, "/videos/Intro.mp4", 0)
	layout, err := atlas.Plan(9, 20)
	if err != nil {
		t.Fatal(err)
	}
	out, err := PatchMesh(tmpl, mod, video, layout, 20)
	if err != nil {
		t.Fatalf("PatchMesh: %v", err)
	}
	if !bytes.Equal(tmpl, original) {
		t.Fatal("template bytes were mutated")
	}
	if len(out) != len(tmpl) {
		t.Fatalf("length changed: %d -> %d", len(tmpl), len(out))
	}
	if !bytes.Contains(out, []byte(mod.ID+"/"+video.ID+".dds")) {
		t.Fatalf("identifiers not patched: %q", out[:40])
	}
	if got := floatAt(out, slotOffsets[1]); got != layout.HoldSeconds() {
		t.Fatalf("slot 1 = %v, want hold %v", got, layout.HoldSeconds())
	}
	for slot := 2; slot <= atlas.MaxAtlases; slot++ {
		if got := floatAt(out, slotOffsets[slot]); got != 0 {
			t.Fatalf("slot %d = %v, want 0", slot, got)
		}
	}
	if got := floatAt(out, freqOffset); got != 2 {
		t.Fatalf("frequency = %v, want 2", got)
	}
}

func TestMeshTimingMultipleAtlases(t *testing.T) {
	layout, err := atlas.Plan(300, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := MeshTiming(layout, 1); got != atlas.FullSeconds() {
		t.Fatalf("slot 1 = %v", got)
	}
	if got := MeshTiming(layout, 2); got != float32(44)/10 {
		t.Fatalf("slot 2 = %v", got)
	}
	if got := MeshTiming(layout, 3); got != 0 {
		t.Fatalf("slot 3 = %v", got)
	}
}

func TestPluginConsumesSlotsInOrder(t *testing.T) {
	slot := TokenVideoID + "|" + TokenVideoTitle + "|" + TokenSoundFile + ";"
	tmpl := []byte("TES4 " + TokenModTitle + " " + TokenModID + " " + slot + slot + TokenModID)

	mod := mustMod(t, "Tapes")
	plugin, err := NewPlugin(tmpl, mod)
	if err != nil {
		t.Fatalf("NewPlugin: %v", err)
	}
	first := mustVideo(t, "Intro.mp4", 0)
	second := mustVideo(t, "Credits.mp4", 1)
	if err := plugin.AddVideo(first, first.SoundFile(".xwm")); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	if err := plugin.AddVideo(second, second.SoundFile(".wav")); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	out := plugin.Bytes()
	if len(out) != len(tmpl) {
		t.Fatalf("length changed: %d -> %d", len(tmpl), len(out))
	}
	want := "TES4 " + mod.Title + " " + mod.ID + " " +
		first.ID + "|" + first.Title + "|" + first.ID + ".xwm;" +
		second.ID + "|" + second.Title + "|" + second.ID + ".wav;" + mod.ID
	if string(out) != want {
		t.Fatalf("plugin =\n%q\nwant\n%q", out, want)
	}
	if plugin.Videos() != 2 {
		t.Fatalf("Videos = %d", plugin.Videos())
	}

	third := mustVideo(t, "Extra.mp4", 2)
	if err := plugin.AddVideo(third, third.SoundFile(".xwm")); !errors.Is(err, ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", err)
	}
	if !bytes.Equal(plugin.Bytes(), out) {
		t.Fatal("failed AddVideo modified the plugin")
	}
}
