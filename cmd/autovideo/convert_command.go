package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"autovideo/internal/config"
	"autovideo/internal/deps"
	"autovideo/internal/ledger"
	"autovideo/internal/logging"
	"autovideo/internal/pipeline"
	"autovideo/internal/preflight"
	"autovideo/internal/templates"
	"autovideo/internal/texture"
	"autovideo/internal/tools"
)

type convertOptions struct {
	modName         string
	videoName       string
	outputDir       string
	fps             int
	frameSize       int
	keepAspectRatio bool
	shortNames      bool
	continueOnError bool
	fastTextures    bool
	templates       []string
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert --mod NAME VIDEO...",
		Short: "Convert videos into texture atlases, meshes and plugins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyConvertOptions(cmd, cfg, opts, len(args)); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, closeLog, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer closeLog()

			if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
				return &tools.MissingError{Tool: missing[0].Command}
			}
			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				return fmt.Errorf("preflight failed: %s: %s", failed[0].Name, failed[0].Detail)
			}

			pipeOpts := []pipeline.Option{pipeline.WithProgress(newProgressSink(os.Stderr, logger))}
			if opts.fastTextures {
				pipeOpts = append(pipeOpts, pipeline.WithTextureQuality(texture.QualityFast))
			}
			store, err := ledger.Open(cmd.Context(), cfg.LedgerPath())
			if err != nil {
				logging.WarnWithContext(logger, "conversion ledger unavailable", "ledger_open_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "delete "+cfg.LedgerPath()+" to reset history"),
					logging.String(logging.FieldImpact, "this run will not appear in history"),
				)
			} else {
				defer store.Close()
				pipeOpts = append(pipeOpts, pipeline.WithLedger(store))
			}

			p, err := pipeline.New(cfg, logger, pipeOpts...)
			if err != nil {
				return err
			}

			req := pipeline.Request{ModName: opts.modName}
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", arg, err)
				}
				if _, err := os.Stat(abs); err != nil {
					return fmt.Errorf("input video: %w", err)
				}
				req.Inputs = append(req.Inputs, pipeline.Input{Path: abs, DisplayName: opts.videoName})
			}

			summary, runErr := p.Run(cmd.Context(), req)
			if len(summary.Videos) > 0 {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.modName, "mod", "m", "", "Mod name (required)")
	flags.StringVar(&opts.videoName, "video-name", "", "Display name for a single input video")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	flags.IntVar(&opts.fps, "fps", 0, "Frames per second to extract (overrides video.framerate)")
	flags.IntVar(&opts.frameSize, "size", 0, "Frame edge length in pixels: 128, 256, 512 or 1024")
	flags.BoolVar(&opts.keepAspectRatio, "keep-aspect-ratio", true, "Pad videos to 4:3 before scaling")
	flags.BoolVar(&opts.shortNames, "short-names", false, "Use V01, V02... as video identifiers")
	flags.BoolVar(&opts.continueOnError, "continue-on-error", false, "Keep converting after a video fails")
	flags.BoolVar(&opts.fastTextures, "fast-textures", false, "Use the faster, lower quality BC1 search")
	flags.StringArrayVar(&opts.templates, "template", nil, "Template override ROLE=PATH (television, projector, drivein, plugin, drivein_plugin)")
	_ = cmd.MarkFlagRequired("mod")

	return cmd
}

// applyConvertOptions layers flags that were set explicitly over cfg and
// re-validates the result.
func applyConvertOptions(cmd *cobra.Command, cfg *config.Config, opts convertOptions, inputs int) error {
	if strings.TrimSpace(opts.videoName) != "" && inputs != 1 {
		return errors.New("--video-name requires exactly one input video")
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if flags.Changed("fps") {
		cfg.Video.Framerate = opts.fps
	}
	if flags.Changed("size") {
		cfg.Video.FrameSize = opts.frameSize
	}
	if flags.Changed("keep-aspect-ratio") {
		cfg.Video.KeepAspectRatio = opts.keepAspectRatio
	}
	if flags.Changed("short-names") {
		cfg.Video.ShortNames = opts.shortNames
	}
	if flags.Changed("continue-on-error") {
		cfg.Batch.ContinueOnError = opts.continueOnError
	}
	for _, raw := range opts.templates {
		key, path, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return fmt.Errorf("--template %q: expected ROLE=PATH", raw)
		}
		role, err := templates.ParseRole(key)
		if err != nil {
			return err
		}
		if err := cfg.SetTemplateOverride(role, path); err != nil {
			return err
		}
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func printSummary(out io.Writer, summary pipeline.Summary) {
	rows := make([][]string, 0, len(summary.Videos))
	var total uint64
	for _, v := range summary.Videos {
		if v.Err != nil {
			rows = append(rows, []string{v.Video.Name, v.Video.ID, "-", "-", "-", "-", "failed"})
			continue
		}
		size := texturesSize(v.Result.Textures)
		total += size
		audio := v.Result.AudioFile
		if audio == "" {
			audio = "none"
		}
		rows = append(rows, []string{
			v.Video.Name,
			v.Video.ID,
			strconv.Itoa(v.Result.Atlases()),
			fmt.Sprintf("%.1fs", v.Result.HoldSeconds()),
			audio,
			humanize.Bytes(size),
			"ok (drive-in: " + yesNo(v.DriveIn) + ")",
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Video", "ID", "Grids", "Hold", "Audio", "Textures", "Status"},
		rows, 2, 3, 5,
	))
	fmt.Fprintf(out, "Mod %s (%s): %d converted, %d failed, %s of textures in %s\n",
		summary.Mod.Name, summary.Mod.ID, summary.Succeeded(), summary.Failed(),
		humanize.Bytes(total), summary.Elapsed.Round(time.Second))
	for _, p := range summary.Plugins {
		fmt.Fprintf(out, "Plugin: %s\n", p)
	}
	if summary.Script != "" {
		fmt.Fprintf(out, "Script: %s\n", summary.Script)
	}
	for _, v := range summary.Videos {
		if v.Err != nil {
			fmt.Fprintf(out, "Failed %s: %v\n", v.Source, v.Err)
		}
	}
}

func texturesSize(paths []string) uint64 {
	var size uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			size += uint64(info.Size())
		}
	}
	return size
}
