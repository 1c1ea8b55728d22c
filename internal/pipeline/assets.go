package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"autovideo/internal/fileutil"
	"autovideo/internal/identifier"
	"autovideo/internal/logging"
	"autovideo/internal/templates"
)

// MeshPath is where the mesh for role is written.
func (p *Pipeline) MeshPath(role templates.Role, mod identifier.Mod, video identifier.Video) string {
	return filepath.Join(p.cfg.Paths.OutputDir, "meshes", "Videos", role.MeshDir(), mod.ID, video.ID+".nif")
}

// PluginPaths returns the main and drive-in plugin paths for mod.
func (p *Pipeline) PluginPaths(mod identifier.Mod) (main, driveIn string) {
	name := mod.FileName()
	main = filepath.Join(p.cfg.Paths.OutputDir, name+".esp")
	driveIn = filepath.Join(p.cfg.Paths.OutputDir, name+" - DriveIn.esp")
	return main, driveIn
}

// DriveInEligible reports whether a video fits on the drive-in screen.
func DriveInEligible(atlases int) bool {
	return atlases >= 1 && atlases <= templates.DriveInMaxAtlases
}

// writeMeshes patches every mesh role for a converted video. All meshes are
// patched in memory before any is written. The drive-in mesh is skipped for
// long videos and when its template is absent; it reports whether one was
// written.
func (p *Pipeline) writeMeshes(ctx context.Context, cache *templates.Cache, job Job, res Result) (bool, error) {
	type output struct {
		path string
		data []byte
	}
	tier := templates.TierFor(res.Atlases())
	var outputs []output
	driveIn := false
	for _, role := range templates.MeshRoles {
		if role == templates.RoleDriveIn && !DriveInEligible(res.Atlases()) {
			continue
		}
		tmpl, err := cache.Get(role, tier)
		if err != nil {
			if role == templates.RoleDriveIn && errors.Is(err, templates.ErrNotFound) {
				logging.WithContext(ctx, p.logger).Debug("drive-in template missing, skipping", logging.Error(err))
				continue
			}
			return false, err
		}
		patched, err := templates.PatchMesh(tmpl, job.Mod, job.Video, res.Layout, p.cfg.Video.Framerate)
		if err != nil {
			return false, fmt.Errorf("patch %s mesh: %w", role, err)
		}
		outputs = append(outputs, output{path: p.MeshPath(role, job.Mod, job.Video), data: patched})
		if role == templates.RoleDriveIn {
			driveIn = true
		}
	}
	for _, out := range outputs {
		if err := fileutil.WriteFile(out.path, out.data, 0o644); err != nil {
			return false, fmt.Errorf("write mesh %s: %w", out.path, err)
		}
	}
	return driveIn, nil
}

// plugins holds the batch's plugin buffers.
type plugins struct {
	main    *templates.Plugin
	driveIn *templates.Plugin
}

func (p *Pipeline) openPlugins(cache *templates.Cache, mod identifier.Mod) (*plugins, error) {
	tmpl, err := cache.Get(templates.RolePlugin, "")
	if err != nil {
		return nil, err
	}
	main, err := templates.NewPlugin(tmpl, mod)
	if err != nil {
		return nil, err
	}
	out := &plugins{main: main}

	diTmpl, err := cache.Get(templates.RoleDriveInPlugin, "")
	switch {
	case err == nil:
		if out.driveIn, err = templates.NewPlugin(diTmpl, mod); err != nil {
			return nil, err
		}
	case errors.Is(err, templates.ErrNotFound):
		p.logger.Debug("drive-in plugin template missing", logging.Error(err))
	default:
		return nil, err
	}
	return out, nil
}

// add registers a converted video. soundFile is the name the plugins record.
// A full drive-in plugin only costs the video its drive-in entry.
func (p *Pipeline) addToPlugins(ctx context.Context, pl *plugins, video identifier.Video, soundFile string, driveIn bool) (bool, error) {
	if err := pl.main.AddVideo(video, soundFile); err != nil {
		return false, err
	}
	if !driveIn || pl.driveIn == nil {
		return false, nil
	}
	if err := pl.driveIn.AddVideo(video, soundFile); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "video left out of drive-in plugin", "drivein_plugin_full",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "use a drive-in plugin template with more video entries"),
			logging.String(logging.FieldImpact, "video plays on televisions and projectors only"),
		)
		return false, nil
	}
	return true, nil
}

// write saves the plugins that received at least one video.
func (p *Pipeline) writePlugins(pl *plugins, mod identifier.Mod) ([]string, error) {
	mainPath, driveInPath := p.PluginPaths(mod)
	var written []string
	if pl.main.Videos() > 0 {
		if err := fileutil.WriteFile(mainPath, pl.main.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write plugin: %w", err)
		}
		written = append(written, mainPath)
	}
	if pl.driveIn != nil && pl.driveIn.Videos() > 0 {
		if err := fileutil.WriteFile(driveInPath, pl.driveIn.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write drive-in plugin: %w", err)
		}
		written = append(written, driveInPath)
	}
	return written, nil
}
