package pipeline

import (
	"errors"
	"log/slog"

	"autovideo/internal/config"
	"autovideo/internal/frames"
	"autovideo/internal/ledger"
	"autovideo/internal/logging"
	"autovideo/internal/media/ffmpeg"
	"autovideo/internal/media/ffprobe"
	"autovideo/internal/media/xwma"
	"autovideo/internal/texture"
	"autovideo/internal/tools"
)

// Pipeline converts videos using the tools and paths in a config.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	ffmpeg   *ffmpeg.Client
	probe    *ffprobe.Prober
	audio    *xwma.Encoder
	loader   frames.Loader
	textures *texture.Encoder
	ledger   *ledger.Store
	sink     ProgressSink
	workers  int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRunner routes every external tool through runner.
func WithRunner(runner *tools.Runner) Option {
	return func(p *Pipeline) {
		if runner == nil {
			return
		}
		p.ffmpeg = ffmpeg.New(p.cfg.Tools.FFmpeg, runner)
		p.probe = ffprobe.New(p.cfg.Tools.FFprobe, runner)
		p.audio = xwma.New(p.cfg.Tools.AudioEncoder, runner)
	}
}

// WithLedger records each converted video in store.
func WithLedger(store *ledger.Store) Option {
	return func(p *Pipeline) { p.ledger = store }
}

// WithProgress sets the sink receiving milestone updates.
func WithProgress(sink ProgressSink) Option {
	return func(p *Pipeline) { p.sink = sink }
}

// WithWorkers bounds frame decoding, atlas building and block encoding
// parallelism. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithTextureQuality selects the BC1 endpoint search.
func WithTextureQuality(q texture.Quality) Option {
	return func(p *Pipeline) { p.textures.Quality = q }
}

// New builds a Pipeline for cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	runner := tools.NewRunner()
	p := &Pipeline{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		ffmpeg:   ffmpeg.New(cfg.Tools.FFmpeg, runner),
		probe:    ffprobe.New(cfg.Tools.FFprobe, runner),
		audio:    xwma.New(cfg.Tools.AudioEncoder, runner),
		textures: texture.NewEncoder(),
		sink:     nopSink{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.loader = frames.Loader{FrameSize: cfg.Video.FrameSize, Workers: p.workers}
	p.textures.Workers = p.workers
	return p, nil
}
