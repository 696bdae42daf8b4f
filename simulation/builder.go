package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/orbitsync/alignment"
	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/orderparam"
	"github.com/sarchlab/orbitsync/recurrence"
	"github.com/sarchlab/orbitsync/timing"
)

// DefaultFrameDelta is the assumed time between frames, in milliseconds,
// before any frame has been observed.
const DefaultFrameDelta = 16.0

// Builder can be used to build a session.
type Builder struct {
	periods        []float64
	epsilon        float64
	referencePhase float64
	longHistory    int
	shortHistory   int
	frameDelta     float64
	hooks          []hooking.Hook
}

// MakeBuilder creates a new builder with the reference settings.
func MakeBuilder() Builder {
	return Builder{
		epsilon:        alignment.DefaultEpsilon,
		referencePhase: timing.ReferenceTop,
		longHistory:    orderparam.DefaultLongHistory,
		shortHistory:   orderparam.ShortHistory,
		frameDelta:     DefaultFrameDelta,
	}
}

// WithPeriods sets the oscillator periods in milliseconds.
func (b Builder) WithPeriods(periods ...float64) Builder {
	b.periods = append([]float64(nil), periods...)
	return b
}

// WithEpsilon sets the top detection tolerance.
func (b Builder) WithEpsilon(epsilon float64) Builder {
	b.epsilon = epsilon
	return b
}

// WithReferencePhase sets the reference phase of all oscillators.
func (b Builder) WithReferencePhase(phase float64) Builder {
	b.referencePhase = phase
	return b
}

// WithLongHistory sets the default capacity of the long history.
func (b Builder) WithLongHistory(capacity int) Builder {
	b.longHistory = capacity
	return b
}

// WithShortHistory sets the capacity of the short history.
func (b Builder) WithShortHistory(capacity int) Builder {
	b.shortHistory = capacity
	return b
}

// WithFrameDelta sets the frame delta assumed before frames are observed.
func (b Builder) WithFrameDelta(ms float64) Builder {
	b.frameDelta = ms
	return b
}

// WithHook registers a hook on the built session.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(append([]hooking.Hook(nil), b.hooks...), hook)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.longHistory < 1 || b.shortHistory < 1 {
		panic("history capacities must be at least 1")
	}

	if b.frameDelta <= 0 {
		panic("frame delta must be positive")
	}
}

// Build builds the session. It fails if no period is given.
func (b Builder) Build() (*Session, error) {
	b.parametersMustBeValid()

	if len(b.periods) == 0 {
		return nil, orderparam.ErrEmptyOscillatorSet
	}

	s := &Session{
		id:             xid.New().String(),
		oscillators:    makeOscillators(b.periods, b.referencePhase),
		referencePhase: b.referencePhase,
		frameDelta:     b.frameDelta,
		detector:       alignment.NewDetector(len(b.periods), b.epsilon),
		tracker: orderparam.NewTrackerWithCapacity(
			b.longHistory, b.shortHistory),
		predictor: recurrence.NewPredictor(),
	}

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	s.refreshPrediction()

	return s, nil
}
