package simulation

import (
	"log/slog"

	"github.com/sarchlab/orbitsync/alignment"
	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/orderparam"
)

// A LogHook writes alignment and full-sync events to a structured logger.
// Alignment events are logged at debug level, full sync at info level.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a LogHook. A nil logger selects slog.Default.
func NewLogHook(logger *slog.Logger) *LogHook {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogHook{logger: logger}
}

// Func logs the event described by ctx.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case alignment.HookPosTopReached:
		evt := ctx.Item.(alignment.Event)
		h.logger.Debug("top reached",
			"oscillator", evt.OscillatorIndex,
			"time_ms", float64(evt.Time))
	case orderparam.HookPosFullSync:
		h.logger.Info("full sync",
			"time_ms", ctx.Time,
			"order_parameter", ctx.Item)
	}
}
