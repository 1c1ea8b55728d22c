package templates

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"autovideo/internal/identifier"
)

// Role is the asset a template produces.
type Role string

const (
	RoleTelevision    Role = "television"
	RoleProjector     Role = "projector"
	RoleDriveIn       Role = "drivein"
	RolePlugin        Role = "plugin"
	RoleDriveInPlugin Role = "drivein_plugin"
)

// Roles lists every template role.
var Roles = []Role{RoleTelevision, RoleProjector, RoleDriveIn, RolePlugin, RoleDriveInPlugin}

// MeshRoles lists the per-video mesh roles.
var MeshRoles = []Role{RoleTelevision, RoleProjector, RoleDriveIn}

// Tier groups videos by atlas count.
type Tier string

const (
	TierSmall Tier = "grid8"
	TierLarge Tier = "grid24"
)

// DriveInMaxAtlases is the largest atlas count the drive-in screen supports.
const DriveInMaxAtlases = 8

// TierFor returns the template tier for a video with the given atlas count.
func TierFor(atlases int) Tier {
	if atlases <= DriveInMaxAtlases {
		return TierSmall
	}
	return TierLarge
}

// Tiered reports whether a role has per-tier variants. Plugins do not.
func (r Role) Tiered() bool {
	return r == RoleTelevision || r == RoleProjector || r == RoleDriveIn
}

// MeshDir is the directory name under meshes/Videos for a mesh role.
func (r Role) MeshDir() string {
	switch r {
	case RoleTelevision:
		return "Television"
	case RoleProjector:
		return "Projector"
	case RoleDriveIn:
		return "DriveIn"
	default:
		return ""
	}
}

// ParseRole maps a configuration key onto a Role.
func ParseRole(value string) (Role, error) {
	candidate := Role(strings.ToLower(strings.TrimSpace(value)))
	for _, r := range Roles {
		if r == candidate {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown template role %q", value)
}

// Tokens embedded in templates. Widths match the identifier package.
const (
	TokenModID      = "AVMODIDENT"
	TokenModTitle   = "AVMODTITLEPLACEHOLDER000"
	TokenVideoID    = "AVVIDEOIDENT"
	TokenVideoTitle = "AVVIDEOTITLEPLACEHOLDER000000000"
	TokenSoundFile  = "AVSOUNDFILE0.xwm"
)

// FrequencyMarker marks the controller frequency in mesh templates.
const FrequencyMarker float32 = 777

// SlotMarker returns the float marker of a 1-based atlas slot.
func SlotMarker(slot int) float32 {
	return float32(1000 + slot)
}

// ErrNotFound is returned when no template file exists for a role and tier.
var ErrNotFound = errors.New("template not found")

// Source locates template files. Overrides win over the template directory.
type Source struct {
	Dir       string
	Overrides map[Role]string
}

// Path returns the file that backs role at tier. Directory templates are named
// <role>_<tier>.<ext> for tiered roles and <role>.<ext> otherwise, where ext is
// nif for meshes and esp for plugins.
func (s Source) Path(role Role, tier Tier) string {
	if override := strings.TrimSpace(s.Overrides[role]); override != "" {
		return override
	}
	ext := ".esp"
	name := string(role)
	if role.Tiered() {
		ext = ".nif"
		name += "_" + string(tier)
	}
	return filepath.Join(s.Dir, name+ext)
}

type key struct {
	role Role
	tier Tier
}

// Cache loads each template at most once and hands out clones. One cache
// lives for one batch.
type Cache struct {
	source Source

	mu    sync.Mutex
	bytes map[key][]byte
}

// NewCache returns an empty cache over source.
func NewCache(source Source) *Cache {
	return &Cache{source: source, bytes: make(map[key][]byte)}
}

// Get returns a private copy of the template for role at tier.
func (c *Cache) Get(role Role, tier Tier) ([]byte, error) {
	if !role.Tiered() {
		tier = ""
	}
	k := key{role: role, tier: tier}

	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.bytes[k]; ok {
		return bytes.Clone(data), nil
	}
	path := c.source.Path(role, tier)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s %s (%s)", ErrNotFound, role, tier, path)
		}
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	c.bytes[k] = data
	return bytes.Clone(data), nil
}

// Available reports whether a template file exists for role at tier.
func (s Source) Available(role Role, tier Tier) bool {
	info, err := os.Stat(s.Path(role, tier))
	return err == nil && !info.IsDir()
}

// checkWidths guards the token contract against identifier width changes.
func checkWidths() error {
	pairs := []struct {
		token string
		width int
	}{
		{TokenModID, identifier.ModIDWidth},
		{TokenModTitle, identifier.ModTitleWidth},
		{TokenVideoID, identifier.VideoIDWidth},
		{TokenVideoTitle, identifier.VideoTitleWidth},
		{TokenSoundFile, identifier.SoundFileWidth},
	}
	for _, p := range pairs {
		if len(p.token) != p.width {
			return fmt.Errorf("token %q is %d bytes, identifier width is %d", p.token, len(p.token), p.width)
		}
	}
	return nil
}
