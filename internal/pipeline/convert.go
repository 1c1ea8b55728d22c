package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"autovideo/internal/atlas"
	"autovideo/internal/fileutil"
	"autovideo/internal/identifier"
	"autovideo/internal/logging"
	"autovideo/internal/media/ffmpeg"
	"autovideo/internal/media/xwma"
)

// Stage names used in logs.
const (
	StagePad     = "pad"
	StageProbe   = "probe"
	StageExtract = "extract"
	StageAudio   = "audio"
	StageLoad    = "load"
	StageAtlas   = "atlas"
	StageAssets  = "assets"
)

// Job is one video to convert.
type Job struct {
	Source string
	Mod    identifier.Mod
	Video  identifier.Video
	// Scratch is a private working directory; it is removed once frames are loaded.
	Scratch string
}

// Result is what a converted video contributes to its mod.
type Result struct {
	Layout atlas.Layout
	// AudioFile is the sound file name, empty when the video has no audio.
	AudioFile string
	// Textures lists the written DDS files in atlas order.
	Textures []string
	Elapsed  time.Duration
}

// Atlases returns the atlas count.
func (r Result) Atlases() int { return r.Layout.Atlases }

// HoldSeconds returns how long the final atlas is shown.
func (r Result) HoldSeconds() float32 { return r.Layout.HoldSeconds() }

// TextureDir is where a video's atlases are written.
func (p *Pipeline) TextureDir(mod identifier.Mod, video identifier.Video) string {
	return filepath.Join(p.cfg.Paths.OutputDir, "textures", "Videos", mod.ID, video.ID)
}

// SoundDir is where a mod's audio files are written.
func (p *Pipeline) SoundDir(mod identifier.Mod) string {
	return filepath.Join(p.cfg.Paths.OutputDir, "Sound", "Videos", mod.ID)
}

// AtlasName returns the file name of the atlas at 1-based index.
func AtlasName(index int) string {
	return fmt.Sprintf("Grid%02d.dds", index)
}

// Convert runs one video through every stage and writes its textures and
// audio. Mesh and plugin templates are handled by Run.
func (p *Pipeline) Convert(ctx context.Context, job Job) (Result, error) {
	return p.convert(ctx, job, newProgress(p.sink, 1, p.cfg.Video.KeepAspectRatio))
}

func (p *Pipeline) convert(ctx context.Context, job Job, prog *progress) (Result, error) {
	started := time.Now()
	if job.Scratch == "" {
		return Result{}, errors.New("convert: scratch directory required")
	}
	frameDir := filepath.Join(job.Scratch, "frames")
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create frame directory: %w", err)
	}

	scratchRemoved := false
	removeScratch := func() {
		if scratchRemoved {
			return
		}
		scratchRemoved = true
		if err := os.RemoveAll(job.Scratch); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "failed to remove scratch directory", "scratch_cleanup_failed",
				logging.String("path", job.Scratch),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed until the next run"),
			)
		}
	}
	defer removeScratch()

	input := job.Source
	if p.cfg.Video.KeepAspectRatio {
		padded := filepath.Join(job.Scratch, "padded"+containerExt(job.Source))
		stageCtx := logging.WithStage(ctx, StagePad)
		logging.WithContext(stageCtx, p.logger).Debug("padding video to 4:3", logging.String("output", padded))
		if err := p.ffmpeg.Pad(stageCtx, input, padded); err != nil {
			return Result{}, err
		}
		input = padded
		prog.step()
	}

	stageCtx := logging.WithStage(ctx, StageProbe)
	info, err := p.probe.Inspect(stageCtx, input)
	if err != nil {
		return Result{}, err
	}
	fps := p.cfg.Video.Framerate
	if seconds := info.DurationSeconds(); seconds > 0 {
		if _, err := atlas.PlanDuration(seconds, fps); err != nil {
			logging.WarnWithContext(logging.WithContext(stageCtx, p.logger), "container duration exceeds atlas capacity", "capacity_estimate_exceeded",
				logging.Float64("duration_seconds", seconds),
				logging.String("max_duration", atlas.FormatDuration(atlas.MaxDuration(fps))),
				logging.String(logging.FieldErrorHint, "trim the video or lower video.framerate if conversion fails"),
				logging.String(logging.FieldImpact, "decoded frame count decides whether the video fits"),
			)
		}
	}
	hasAudio := info.AudioStreamCount() > 0
	logging.WithContext(stageCtx, p.logger).Debug("probed video",
		logging.Bool("audio", hasAudio),
		logging.Float64("duration_seconds", info.DurationSeconds()),
		logging.Int("estimated_frames", info.EstimatedFrames(fps)),
	)

	wav := ""
	if hasAudio {
		wav = filepath.Join(job.Scratch, "audio.wav")
	}
	stageCtx = logging.WithStage(ctx, StageExtract)
	if err := p.ffmpeg.Extract(stageCtx, ffmpeg.ExtractRequest{
		Input:     input,
		FrameDir:  frameDir,
		FrameSize: p.cfg.Video.FrameSize,
		FPS:       fps,
		AudioPath: wav,
	}); err != nil {
		return Result{}, err
	}
	prog.step()

	var result Result
	if hasAudio {
		name, err := p.placeAudio(logging.WithStage(ctx, StageAudio), job, wav)
		if err != nil {
			return Result{}, err
		}
		result.AudioFile = name
	}

	stageCtx = logging.WithStage(ctx, StageLoad)
	images, err := p.loader.Load(stageCtx, frameDir)
	if err != nil {
		return Result{}, fmt.Errorf("load frames: %w", err)
	}
	removeScratch()
	logging.WithContext(stageCtx, p.logger).Debug("frames loaded", logging.Int("frames", len(images)))

	stageCtx = logging.WithStage(ctx, StageAtlas)
	textureDir := p.TextureDir(job.Mod, job.Video)
	if err := os.RemoveAll(textureDir); err != nil {
		return Result{}, fmt.Errorf("clear texture directory %s: %w", textureDir, err)
	}
	compositor := atlas.Compositor{FrameSize: p.cfg.Video.FrameSize, FPS: fps, Workers: p.workers}
	layout, err := compositor.Run(stageCtx, images, func(ctx context.Context, a atlas.Atlas) error {
		path := filepath.Join(textureDir, AtlasName(a.Index))
		if err := p.textures.WriteFile(ctx, path, a.Image); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logging.WithContext(ctx, p.logger).Debug("atlas written",
			logging.Int("index", a.Index),
			logging.Int("frames", a.Frames),
			logging.String("path", path),
		)
		return nil
	})
	if err != nil {
		return Result{}, nameCapacityError(err, job.Video)
	}
	prog.step()

	result.Layout = layout
	for i := 1; i <= layout.Atlases; i++ {
		result.Textures = append(result.Textures, filepath.Join(textureDir, AtlasName(i)))
	}
	result.Elapsed = time.Since(started)
	return result, nil
}

// placeAudio encodes wav into the mod's sound directory, falling back to the
// wav itself when no xwm can be produced.
func (p *Pipeline) placeAudio(ctx context.Context, job Job, wav string) (string, error) {
	soundDir := p.SoundDir(job.Mod)
	if err := os.MkdirAll(soundDir, 0o755); err != nil {
		return "", fmt.Errorf("create sound directory: %w", err)
	}
	xwmName := job.Video.SoundFile(".xwm")
	wavName := job.Video.SoundFile(".wav")
	_ = os.Remove(filepath.Join(soundDir, wavName))

	err := p.audio.Encode(ctx, wav, filepath.Join(soundDir, xwmName))
	if err == nil {
		return xwmName, nil
	}
	if !errors.Is(err, xwma.ErrUnsupported) {
		return "", err
	}
	logging.WarnWithContext(logging.WithContext(ctx, p.logger), "xwm encoding unavailable, shipping wav", "audio_fallback",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "install xWMAEncode and set tools.audio_encoder"),
		logging.String(logging.FieldImpact, "wav shipped instead of xwm"),
	)
	if err := fileutil.CopyFile(wav, filepath.Join(soundDir, wavName)); err != nil {
		return "", fmt.Errorf("copy wav: %w", err)
	}
	return wavName, nil
}

func nameCapacityError(err error, video identifier.Video) error {
	var capErr *atlas.CapacityError
	if errors.As(err, &capErr) && capErr.Video == "" {
		capErr.Video = video.Name
	}
	return err
}

func containerExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}
