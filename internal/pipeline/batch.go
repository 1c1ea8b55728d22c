package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"autovideo/internal/identifier"
	"autovideo/internal/ledger"
	"autovideo/internal/logging"
	"autovideo/internal/script"
	"autovideo/internal/staging"
	"autovideo/internal/templates"
)

var (
	// ErrBusy is returned when another batch holds the cache directory lock.
	ErrBusy = errors.New("another autovideo conversion is already running")
	// ErrVideosFailed is returned when continue-on-error let a batch finish
	// with failed videos.
	ErrVideosFailed = errors.New("some videos failed to convert")
)

// Input is one source video of a batch.
type Input struct {
	Path string
	// DisplayName overrides the name derived from the file name.
	DisplayName string
}

// Request describes a batch.
type Request struct {
	ModName string
	Inputs  []Input
}

// VideoOutcome is the result of one video in a batch.
type VideoOutcome struct {
	Source string
	Video  identifier.Video
	Result Result
	// SoundFile is the sound name written into the plugin, the script and
	// the ledger. Videos without audio still get one.
	SoundFile string
	DriveIn   bool
	Err       error
}

// Summary describes a finished batch.
type Summary struct {
	RunID   string
	Mod     identifier.Mod
	Videos  []VideoOutcome
	Plugins []string
	Script  string
	Elapsed time.Duration
}

// Succeeded returns the number of converted videos.
func (s Summary) Succeeded() int {
	n := 0
	for _, v := range s.Videos {
		if v.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of videos that did not convert.
func (s Summary) Failed() int {
	return len(s.Videos) - s.Succeeded()
}

// Identify derives the mod and video identifiers for req and checks that no
// two videos collide.
func Identify(req Request, shortNames bool) (identifier.Mod, []identifier.Video, error) {
	mod, err := identifier.NewMod(req.ModName)
	if err != nil {
		return identifier.Mod{}, nil, err
	}
	if len(req.Inputs) == 0 {
		return identifier.Mod{}, nil, errors.New("no input videos")
	}
	videos := make([]identifier.Video, 0, len(req.Inputs))
	for i, in := range req.Inputs {
		v, err := identifier.NewVideo(in.Path, identifier.VideoOptions{
			DisplayName: in.DisplayName,
			ShortNames:  shortNames,
			Index:       i,
		})
		if err != nil {
			return identifier.Mod{}, nil, err
		}
		videos = append(videos, v)
	}
	if err := identifier.CheckUnique(videos); err != nil {
		return identifier.Mod{}, nil, err
	}
	return mod, videos, nil
}

// Run converts every input of req into one mod. Videos run sequentially. With
// batch.continue_on_error a failed video is recorded and the batch goes on;
// otherwise the first failure stops it. Plugins and the script cover the
// videos that converted.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	started := time.Now()
	mod, videos, err := Identify(req, p.cfg.Video.ShortNames)
	if err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(p.cfg.Paths.CacheDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create cache directory: %w", err)
	}
	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("%w (lock %s)", ErrBusy, p.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	staging.CleanStale(ctx, p.cfg.Paths.CacheDir, staging.DefaultMaxAge, p.logger)

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	summary := Summary{RunID: runID, Mod: mod}

	scratch, err := staging.Create(p.cfg.Paths.CacheDir, runID)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := scratch.Remove(); err != nil {
			logger.Warn("failed to remove run scratch directory", logging.String("path", scratch.Root), logging.Error(err))
		}
	}()

	cache := templates.NewCache(p.cfg.TemplateSource())
	pl, err := p.openPlugins(cache, mod)
	if err != nil {
		return summary, err
	}

	logger.Info("batch started",
		logging.String("mod", mod.Name),
		logging.String("mod_id", mod.ID),
		logging.Int("videos", len(videos)),
		logging.Int("frame_size", p.cfg.Video.FrameSize),
		logging.Int("framerate", p.cfg.Video.Framerate),
	)

	prog := newProgress(p.sink, len(videos), p.cfg.Video.KeepAspectRatio)
	var stopErr error
	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		outcome := p.runVideo(ctx, cache, pl, mod, video, req.Inputs[i].Path, scratch, prog)
		prog.finishVideo(i)
		summary.Videos = append(summary.Videos, outcome)
		if outcome.Err != nil && (!p.cfg.Batch.ContinueOnError || errors.Is(outcome.Err, context.Canceled)) {
			stopErr = outcome.Err
			break
		}
	}

	plugins, err := p.writePlugins(pl, mod)
	summary.Plugins = plugins
	if err != nil {
		return summary, err
	}
	if p.cfg.Script.Enabled && summary.Succeeded() > 0 {
		path := filepath.Join(p.cfg.Paths.OutputDir, script.FileName)
		if err := script.WriteFile(path, BuildScriptRequest(p.cfg.ScriptInfo(), mod, summary.Videos)); err != nil {
			return summary, fmt.Errorf("write script: %w", err)
		}
		summary.Script = path
	}

	summary.Elapsed = time.Since(started)
	logger.Info("batch finished",
		logging.Int("converted", summary.Succeeded()),
		logging.Int("failed", summary.Failed()),
		logging.Duration("elapsed", summary.Elapsed),
	)

	if stopErr != nil {
		return summary, stopErr
	}
	if summary.Failed() > 0 {
		return summary, fmt.Errorf("%d of %d videos: %w", summary.Failed(), len(videos), ErrVideosFailed)
	}
	return summary, nil
}

func (p *Pipeline) runVideo(ctx context.Context, cache *templates.Cache, pl *plugins, mod identifier.Mod, video identifier.Video, source string, scratch staging.Dir, prog *progress) VideoOutcome {
	ctx = logging.WithVideoID(ctx, video.ID)
	logger := logging.WithContext(ctx, p.logger)
	outcome := VideoOutcome{Source: source, Video: video}

	dir, err := scratch.Video(video.ID)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	logger.Info("converting video", logging.String("source", source), logging.String("name", video.Name))

	res, err := p.convert(ctx, Job{Source: source, Mod: mod, Video: video, Scratch: dir}, prog)
	if err != nil {
		outcome.Err = err
		logging.ErrorWithContext(logger, "video conversion failed", "video_failed",
			logging.String("source", source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
		return outcome
	}
	outcome.Result = res

	assetCtx := logging.WithStage(ctx, StageAssets)
	meshDriveIn, err := p.writeMeshes(assetCtx, cache, Job{Mod: mod, Video: video}, res)
	if err != nil {
		outcome.Err = err
		logging.ErrorWithContext(logger, "mesh patching failed", "video_failed", logging.Error(err))
		return outcome
	}
	outcome.SoundFile = soundFileName(video, res.AudioFile)
	driveIn, err := p.addToPlugins(assetCtx, pl, video, outcome.SoundFile, meshDriveIn)
	if err != nil {
		outcome.Err = err
		logging.ErrorWithContext(logger, "plugin patching failed", "video_failed", logging.Error(err))
		return outcome
	}
	outcome.DriveIn = driveIn

	if p.ledger != nil {
		entry := ledger.Entry{
			RunID:       logging.RunIDFromContext(ctx),
			ModID:       mod.ID,
			ModName:     mod.Name,
			VideoID:     video.ID,
			VideoName:   video.Name,
			SourcePath:  source,
			Atlases:     res.Atlases(),
			HoldSeconds: float64(res.HoldSeconds()),
			AudioFile:   outcome.SoundFile,
			DriveIn:     driveIn,
			FrameSize:   p.cfg.Video.FrameSize,
			FPS:         p.cfg.Video.Framerate,
		}
		if err := p.ledger.Record(ctx, entry); err != nil {
			logging.WarnWithContext(logger, "failed to record conversion", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check "+p.ledger.Path()),
				logging.String(logging.FieldImpact, "video missing from history and script regeneration"),
			)
		}
	}

	logger.Info("video converted",
		logging.Int("atlases", res.Atlases()),
		logging.Float64("hold_seconds", float64(res.HoldSeconds())),
		logging.String("audio", res.AudioFile),
		logging.Bool("drive_in", driveIn),
		logging.Duration("elapsed", res.Elapsed),
	)
	return outcome
}

// BuildScriptRequest assembles the script input for the converted videos.
func BuildScriptRequest(info script.Info, mod identifier.Mod, outcomes []VideoOutcome) script.Request {
	req := script.Request{Info: info, ModID: mod.ID, ModName: mod.Name}
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		req.Videos = append(req.Videos, script.Video{
			ID:        o.Video.ID,
			Name:      o.Video.Name,
			AudioFile: o.SoundFile,
			DriveIn:   o.DriveIn,
		})
	}
	return req
}

// ScriptRequestFromLedger rebuilds a script input from recorded entries.
func ScriptRequestFromLedger(info script.Info, entries []ledger.Entry) (script.Request, error) {
	if len(entries) == 0 {
		return script.Request{}, errors.New("no recorded conversions")
	}
	req := script.Request{Info: info, ModID: entries[0].ModID, ModName: entries[0].ModName}
	for _, e := range entries {
		req.Videos = append(req.Videos, script.Video{
			ID:        e.VideoID,
			Name:      e.VideoName,
			AudioFile: soundFileName(identifier.Video{ID: e.VideoID}, e.AudioFile),
			DriveIn:   e.DriveIn,
		})
	}
	return req, nil
}

// soundFileName returns the written audio file name, or the xwm name a
// silent video would have.
func soundFileName(video identifier.Video, audioFile string) string {
	if audioFile != "" {
		return audioFile
	}
	return video.SoundFile(".xwm")
}
