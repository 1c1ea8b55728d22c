package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"autovideo/internal/logging"
	"autovideo/internal/pipeline"
)

// barSink draws a progress bar, creating it on the first report once the
// total is known.
type barSink struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (s *barSink) Report(current, max int) {
	if s.bar == nil {
		s.bar = progressbar.NewOptions(max,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionSetDescription("Converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(s.out, "\n") }),
		)
	}
	_ = s.bar.Set(current)
}

// logSink reports milestones as log lines when stderr is not a terminal.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) Report(current, max int) {
	s.logger.Info("progress", logging.Int("current", current), logging.Int("max", max))
}

func newProgressSink(w io.Writer, logger *slog.Logger) pipeline.ProgressSink {
	if isTerminal(w) {
		return &barSink{out: w}
	}
	return logSink{logger: logging.NewComponentLogger(logger, "progress")}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
