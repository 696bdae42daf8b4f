package recurrence

import (
	"errors"
	"math"
	"slices"

	"github.com/sarchlab/orbitsync/rational"
	"github.com/sarchlab/orbitsync/timing"
)

// Status classifies a prediction.
type Status int

// The prediction statuses.
const (
	// StatusNone means no recurrence is defined, e.g. a single oscillator
	// or an invalid period.
	StatusNone Status = iota

	// StatusFinite means Duration holds the recurrence time.
	StatusFinite

	// StatusUnbounded means the oscillators never realign within a
	// representable time.
	StatusUnbounded
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusFinite:
		return "finite"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// A Prediction is the outcome of a recurrence computation.
type Prediction struct {
	Duration float64
	Status   Status
	Err      error
}

// Finite tells whether the prediction holds a finite duration.
func (p Prediction) Finite() bool {
	return p.Status == StatusFinite
}

// Value returns the duration, +Inf for unbounded predictions and NaN when
// no recurrence is defined.
func (p Prediction) Value() float64 {
	switch p.Status {
	case StatusFinite:
		return p.Duration
	case StatusUnbounded:
		return math.Inf(1)
	default:
		return math.NaN()
	}
}

// Classify turns the result of a recurrence computation into a Prediction.
// Overflow and non-convergent rationalization both mean that the group does
// not realign in any representable time.
func Classify(duration float64, err error) Prediction {
	switch {
	case err == nil:
		return Prediction{Duration: duration, Status: StatusFinite}
	case errors.Is(err, ErrRecurrenceTooLarge),
		errors.Is(err, rational.ErrDidNotConverge),
		errors.Is(err, rational.ErrOutOfRange):
		return Prediction{Status: StatusUnbounded, Err: err}
	default:
		return Prediction{Status: StatusNone, Err: err}
	}
}

// A Predictor computes recurrence predictions on configuration changes and
// caches the last one.
type Predictor struct {
	periods []float64
	cached  Prediction
	valid   bool
}

// NewPredictor creates an empty predictor.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict returns the recurrence prediction for the periods. Evenly spaced
// periods use the closed-form series. All others use the LCM of the
// rationalized periods. Repeated calls with the same periods return the
// cached result.
func (p *Predictor) Predict(periods []float64) Prediction {
	if p.valid && slices.Equal(p.periods, periods) {
		return p.cached
	}

	p.periods = slices.Clone(periods)
	p.cached = Classify(recurrenceOf(periods))
	p.valid = true

	return p.cached
}

// Last returns the most recent prediction.
func (p *Predictor) Last() (Prediction, bool) {
	return p.cached, p.valid
}

// Invalidate drops the cached prediction.
func (p *Predictor) Invalidate() {
	p.valid = false
	p.periods = nil
	p.cached = Prediction{}
}

func recurrenceOf(periods []float64) (float64, error) {
	if len(periods) < 2 {
		return 0, ErrNoRecurrence
	}

	for _, period := range periods {
		if err := timing.Period(period).Validate(); err != nil {
			return 0, err
		}
	}

	if minPeriod, maxPeriod, ok := UniformPeriods(periods); ok {
		return PredictSystemRestart(len(periods), minPeriod, maxPeriod)
	}

	return Recurrence(periods)
}
