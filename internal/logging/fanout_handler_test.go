package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFanoutRespectsHandlerLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoLevel := new(slog.LevelVar)
	debugLevel := new(slog.LevelVar)
	debugLevel.Set(slog.LevelDebug)

	handler := newFanoutHandler(
		newJSONHandler(&infoBuf, infoLevel, false),
		newJSONHandler(&debugBuf, debugLevel, false),
	)
	logger := slog.New(handler).With("component", "atlas")

	logger.Debug("cell placed")
	logger.Info("atlas complete")

	if strings.Contains(infoBuf.String(), "cell placed") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "atlas complete") {
		t.Fatalf("info handler missing info record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "cell placed") || !strings.Contains(debugBuf.String(), `"component":"atlas"`) {
		t.Fatalf("debug handler missing records: %s", debugBuf.String())
	}
}

func TestFanoutCollapses(t *testing.T) {
	if _, ok := newFanoutHandler().(NoopHandler); !ok {
		t.Fatal("expected noop handler for empty fanout")
	}
	single := newJSONHandler(&bytes.Buffer{}, new(slog.LevelVar), false)
	if got := newFanoutHandler(nil, single); got != single {
		t.Fatal("expected single handler to be returned unchanged")
	}
	if newFanoutHandler(single, single).Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("info handlers should not enable debug")
	}
}
