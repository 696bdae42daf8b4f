// Package simulation wires the timing, alignment, order parameter and
// recurrence packages into a session that is advanced once per frame.
//
// A Session owns all mutable state of one group of oscillators. Sessions are
// independent from each other and none of them is safe for concurrent use.
// Use a Driver when frames are produced on one goroutine and observed on
// another.
package simulation

import (
	"fmt"
	"math"

	"github.com/sarchlab/orbitsync/alignment"
	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/orderparam"
	"github.com/sarchlab/orbitsync/recurrence"
	"github.com/sarchlab/orbitsync/timefmt"
	"github.com/sarchlab/orbitsync/timing"
)

// A Frame is everything the engine produces for one elapsed time.
type Frame struct {
	Time timing.VTimeInMs

	// Angles holds one angle per oscillator. Oscillators with an invalid
	// period get NaN.
	Angles []float64

	Events         []alignment.Event
	OrderParameter float64

	// FullSync is set when an oscillator reaches the top while the order
	// parameter is at full synchronization.
	FullSync bool
}

// A Session is one simulation of a group of oscillators.
type Session struct {
	id             string
	oscillators    []timing.Oscillator
	referencePhase float64
	frameDelta     float64

	detector   *alignment.Detector
	tracker    *orderparam.Tracker
	predictor  *recurrence.Predictor
	prediction recurrence.Prediction

	lastFrame Frame
	hasFrame  bool
}

// ID returns the unique ID of the session.
func (s *Session) ID() string {
	return s.id
}

// Oscillators returns a copy of the oscillators.
func (s *Session) Oscillators() []timing.Oscillator {
	out := make([]timing.Oscillator, len(s.oscillators))
	copy(out, s.oscillators)
	return out
}

// Periods returns the oscillator periods in milliseconds.
func (s *Session) Periods() []float64 {
	periods := make([]float64, len(s.oscillators))
	for i, o := range s.oscillators {
		periods[i] = float64(o.Period)
	}
	return periods
}

// Detector returns the alignment detector of the session.
func (s *Session) Detector() *alignment.Detector {
	return s.detector
}

// Tracker returns the order parameter tracker of the session.
func (s *Session) Tracker() *orderparam.Tracker {
	return s.tracker
}

// Prediction returns the current recurrence prediction.
func (s *Session) Prediction() recurrence.Prediction {
	return s.prediction
}

// LastFrame returns the most recently produced frame.
func (s *Session) LastFrame() (Frame, bool) {
	return s.lastFrame, s.hasFrame
}

// AcceptHook registers a hook on both the detector and the tracker.
func (s *Session) AcceptHook(hook hooking.Hook) {
	s.detector.AcceptHook(hook)
	s.tracker.AcceptHook(hook)
}

// NumHooks returns the number of hooks registered on the detector.
func (s *Session) NumHooks() int {
	return s.detector.NumHooks()
}

// Advance computes the frame at the given elapsed time. Oscillators with an
// invalid period are left out of the order parameter. The frame is returned
// even if the order parameter cannot be computed.
func (s *Session) Advance(elapsed timing.VTimeInMs) (Frame, error) {
	if math.IsNaN(float64(elapsed)) || math.IsInf(float64(elapsed), 0) ||
		elapsed < 0 {
		return Frame{}, fmt.Errorf("%w: %v", timing.ErrInvalidTime, elapsed)
	}

	frame := Frame{
		Time:   elapsed,
		Angles: make([]float64, len(s.oscillators)),
	}
	valid := make([]float64, 0, len(s.oscillators))

	for i, o := range s.oscillators {
		angle, err := o.Angle(elapsed)
		if err != nil {
			frame.Angles[i] = math.NaN()
			s.detector.Rearm(i)
			continue
		}

		frame.Angles[i] = angle
		valid = append(valid, angle)

		if evt, ok := s.detector.Update(i, angle, elapsed); ok {
			frame.Events = append(frame.Events, evt)
		}
	}

	r, err := s.tracker.Update(valid, elapsed)
	if err != nil {
		return frame, err
	}

	frame.OrderParameter = r
	frame.FullSync = len(frame.Events) > 0 && orderparam.IsFullSync(r)

	s.lastFrame = frame
	s.hasFrame = true

	return frame, nil
}

// SetPeriods edits the periods of the existing oscillators. The histories
// are kept and the long history is resized to the new prediction. A change
// in the number of oscillators is handled as Reconfigure.
func (s *Session) SetPeriods(periods []float64) error {
	if len(periods) != len(s.oscillators) {
		return s.Reconfigure(periods)
	}

	for i, p := range periods {
		s.oscillators[i].Period = timing.Period(p)
	}

	s.refreshPrediction()

	return nil
}

// Reconfigure replaces the whole oscillator set. The detector is resized and
// both histories are cleared.
func (s *Session) Reconfigure(periods []float64) error {
	if len(periods) == 0 {
		return orderparam.ErrEmptyOscillatorSet
	}

	s.oscillators = makeOscillators(periods, s.referencePhase)
	s.detector.Resize(len(periods))
	s.tracker.Clear()
	s.hasFrame = false
	s.lastFrame = Frame{}
	s.refreshPrediction()

	return nil
}

// Reset restarts the session from elapsed time zero with the same
// oscillators.
func (s *Session) Reset() {
	s.detector.Reset()
	s.tracker.Clear()
	s.hasFrame = false
	s.lastFrame = Frame{}
	s.refreshPrediction()
}

// NextReset returns the time left from elapsed until the next recurrence.
// It is NaN when no recurrence is defined.
func (s *Session) NextReset(elapsed timing.VTimeInMs) float64 {
	if s.prediction.Status == recurrence.StatusNone {
		return math.NaN()
	}

	return recurrence.NextReset(elapsed, s.prediction.Value())
}

// FormattedReset renders the time until the next recurrence.
func (s *Session) FormattedReset(elapsed timing.VTimeInMs) string {
	if s.prediction.Status == recurrence.StatusNone {
		return NoPredictionText
	}

	return timefmt.FormatResetTime(s.NextReset(elapsed))
}

// NoPredictionText is displayed when no recurrence is defined.
const NoPredictionText = "n/a"

// FormattedPrediction renders the full recurrence time.
func (s *Session) FormattedPrediction() string {
	if s.prediction.Status == recurrence.StatusNone {
		return NoPredictionText
	}

	return timefmt.Format(s.prediction.Value())
}

func (s *Session) refreshPrediction() {
	s.prediction = s.predictor.Predict(s.Periods())

	dt, ok := s.tracker.FrameDelta()
	if !ok {
		dt = s.frameDelta
	}

	s.tracker.AdjustHistoryLength(
		s.prediction.Duration, s.prediction.Finite(), dt)
}

func makeOscillators(periods []float64, referencePhase float64) []timing.Oscillator {
	oscillators := make([]timing.Oscillator, len(periods))
	for i, p := range periods {
		oscillators[i] = timing.Oscillator{
			Period:         timing.Period(p),
			ReferencePhase: referencePhase,
		}
	}
	return oscillators
}
