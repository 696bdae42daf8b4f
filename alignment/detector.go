// Package alignment turns continuous oscillator angles into discrete
// "reached the top" events.
//
// Each oscillator has a two-state machine, AWAY and AT_TOP. Entering AT_TOP
// emits one event. Leaving it emits nothing and re-arms the detector, so one
// physical crossing produces at most one event whatever the frame rate.
//
// A crossing can be missed entirely when a single frame step jumps over the
// whole ε window. The window is a design tolerance and low frame rates are
// accepted to drop events.
package alignment

import (
	"log"
	"math"

	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/timing"
)

// HookPosTopReached marks when an oscillator reaches the top position.
var HookPosTopReached = &hooking.HookPos{Name: "Top Reached"}

// DefaultEpsilon is the tolerance on |sin(angle) + 1| that counts as being
// at the top.
const DefaultEpsilon = 0.01

// State is the per-oscillator detector state.
type State int

// The detector states.
const (
	StateAway State = iota
	StateAtTop
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAway:
		return "AWAY"
	case StateAtTop:
		return "AT_TOP"
	default:
		return "UNKNOWN"
	}
}

// Event reports that an oscillator has just reached the top.
type Event struct {
	OscillatorIndex int
	Time            timing.VTimeInMs
}

// IsAtTop checks whether angle lies within epsilon of the top position.
func IsAtTop(angle, epsilon float64) bool {
	return math.Abs(math.Sin(angle)+1) < epsilon
}

// A Detector owns the alignment state of a group of oscillators. It is not
// safe for concurrent use.
type Detector struct {
	*hooking.HookableBase

	epsilon float64
	states  []State
}

// NewDetector creates a detector for numOscillators oscillators, all AWAY.
// A non-positive epsilon selects DefaultEpsilon.
func NewDetector(numOscillators int, epsilon float64) *Detector {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	d := &Detector{
		HookableBase: hooking.NewHookableBase(),
		epsilon:      epsilon,
	}
	d.Resize(numOscillators)

	return d
}

// Epsilon returns the top tolerance.
func (d *Detector) Epsilon() float64 {
	return d.epsilon
}

// NumOscillators returns the number of tracked oscillators.
func (d *Detector) NumOscillators() int {
	return len(d.states)
}

// State returns the current state of an oscillator.
func (d *Detector) State(index int) State {
	if index < 0 || index >= len(d.states) {
		return StateAway
	}

	return d.states[index]
}

// Resize re-creates the state table for n oscillators, all AWAY.
func (d *Detector) Resize(n int) {
	if n < 0 {
		log.Panic("number of oscillators cannot be negative")
	}

	d.states = make([]State, n)
}

// Reset re-arms every oscillator without changing the count.
func (d *Detector) Reset() {
	for i := range d.states {
		d.states[i] = StateAway
	}
}

// Rearm sets one oscillator back to AWAY, e.g. while its angle is
// undefined. Unknown indices are ignored.
func (d *Detector) Rearm(index int) {
	if index < 0 || index >= len(d.states) {
		return
	}

	d.states[index] = StateAway
}

// Update feeds the current angle of one oscillator. It returns an event and
// true only on the frame where the oscillator enters the top window.
func (d *Detector) Update(
	index int,
	angle float64,
	now timing.VTimeInMs,
) (Event, bool) {
	if index < 0 {
		log.Panic("oscillator index cannot be negative")
	}

	for index >= len(d.states) {
		d.states = append(d.states, StateAway)
	}

	atTop := IsAtTop(angle, d.epsilon)
	wasAtTop := d.states[index] == StateAtTop

	if !atTop {
		d.states[index] = StateAway
		return Event{}, false
	}

	d.states[index] = StateAtTop
	if wasAtTop {
		return Event{}, false
	}

	evt := Event{OscillatorIndex: index, Time: now}

	if d.NumHooks() > 0 {
		d.InvokeHook(hooking.HookCtx{
			Domain: d,
			Pos:    HookPosTopReached,
			Time:   float64(now),
			Item:   evt,
		})
	}

	return evt, true
}
