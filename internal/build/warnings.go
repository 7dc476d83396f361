package build

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// countingHandler counts warning-or-worse records passing through it.
type countingHandler struct {
	next slog.Handler
	n    *atomic.Int64
}

func newCountingLogger(base *slog.Logger) (*slog.Logger, *atomic.Int64) {
	n := &atomic.Int64{}
	return slog.New(countingHandler{next: base.Handler(), n: n}), n
}

func (h countingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || h.next.Enabled(ctx, level)
}

func (h countingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		h.n.Add(1)
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return countingHandler{next: h.next.WithAttrs(attrs), n: h.n}
}

func (h countingHandler) WithGroup(name string) slog.Handler {
	return countingHandler{next: h.next.WithGroup(name), n: h.n}
}
