// Package xwma re-encodes extracted wav audio into the xWMA format the game
// engine streams natively.
package xwma

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"autovideo/internal/tools"
)

// ErrUnsupported means no xwm file could be produced; callers keep the wav.
var ErrUnsupported = errors.New("xwma encoding unavailable")

// Encoder runs an xWMAEncode compatible binary.
type Encoder struct {
	binary string
	runner *tools.Runner
}

// New returns an Encoder. An empty binary disables encoding.
func New(binary string, runner *tools.Runner) *Encoder {
	if runner == nil {
		runner = tools.NewRunner()
	}
	return &Encoder{binary: strings.TrimSpace(binary), runner: runner}
}

// Enabled reports whether an encoder binary is configured.
func (e *Encoder) Enabled() bool {
	return e != nil && e.binary != ""
}

// Encode converts wav into xwm. Any failure to produce xwm is reported as
// ErrUnsupported wrapping the underlying cause.
func (e *Encoder) Encode(ctx context.Context, wav, xwm string) error {
	if !e.Enabled() {
		return fmt.Errorf("%w: no encoder configured", ErrUnsupported)
	}
	res := e.runner.Run(ctx, tools.Invocation{
		Tool:   "xWMAEncode",
		Binary: e.binary,
		Action: "encode audio",
		Input:  wav,
		Args:   []string{wav, xwm},
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err := res.Err(); err != nil {
		_ = os.Remove(xwm)
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	info, err := os.Stat(xwm)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(xwm)
		return fmt.Errorf("%w: encoder produced no output for %s", ErrUnsupported, wav)
	}
	return nil
}
