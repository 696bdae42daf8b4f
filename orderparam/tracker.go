package orderparam

import (
	"math"

	"github.com/sarchlab/orbitsync/hooking"
	"github.com/sarchlab/orbitsync/timing"
)

// HookPosFullSync marks when the order parameter rises into full
// synchronization.
var HookPosFullSync = &hooking.HookPos{Name: "Full Sync"}

const (
	// DefaultLongHistory is the long buffer capacity when no finite
	// recurrence prediction exists.
	DefaultLongHistory = 5000

	// ShortHistory is the fixed capacity of the short buffer.
	ShortHistory = 500

	// MaxLongHistory bounds the long buffer when a prediction is very far
	// away.
	MaxLongHistory = 1 << 22

	// historyMargin makes the long buffer cover a bit more than one
	// recurrence.
	historyMargin = 1.2
)

// A Tracker computes the order parameter every frame and keeps a long and a
// short sliding history of it. It is not safe for concurrent use.
type Tracker struct {
	*hooking.HookableBase

	long        *HistoryBuffer
	short       *HistoryBuffer
	defaultLong int

	lastTime   timing.VTimeInMs
	hasLast    bool
	frameDelta float64
	inSync     bool
}

// NewTracker creates a tracker with the default long history capacity.
func NewTracker() *Tracker {
	return NewTrackerWithCapacity(DefaultLongHistory, ShortHistory)
}

// NewTrackerWithCapacity creates a tracker with custom default capacities.
func NewTrackerWithCapacity(long, short int) *Tracker {
	return &Tracker{
		HookableBase: hooking.NewHookableBase(),
		long:         NewHistoryBuffer("OrderParameter.Long", long),
		short:        NewHistoryBuffer("OrderParameter.Short", short),
		defaultLong:  long,
	}
}

// LongHistory returns the long-term buffer.
func (t *Tracker) LongHistory() *HistoryBuffer {
	return t.long
}

// ShortHistory returns the short-term buffer.
func (t *Tracker) ShortHistory() *HistoryBuffer {
	return t.short
}

// DefaultLongCapacity returns the capacity the long buffer falls back to.
func (t *Tracker) DefaultLongCapacity() int {
	return t.defaultLong
}

// FrameDelta returns the last observed time between two updates.
func (t *Tracker) FrameDelta() (float64, bool) {
	return t.frameDelta, t.frameDelta > 0
}

// Update computes the order parameter of phases, appends it to both
// histories and returns it.
func (t *Tracker) Update(
	phases []float64,
	timestamp timing.VTimeInMs,
) (float64, error) {
	r, err := Compute(phases)
	if err != nil {
		return 0, err
	}

	t.observeTime(timestamp)
	t.long.Push(r)
	t.short.Push(r)
	t.checkFullSync(r, timestamp)

	return r, nil
}

// UpdateOscillators is Update over the angles of the given oscillators.
func (t *Tracker) UpdateOscillators(
	oscillators []timing.Oscillator,
	elapsed timing.VTimeInMs,
) (float64, error) {
	return t.Update(Angles(oscillators, elapsed), elapsed)
}

// InSync tells whether the last update was at full synchronization.
func (t *Tracker) InSync() bool {
	return t.inSync
}

func (t *Tracker) observeTime(now timing.VTimeInMs) {
	if t.hasLast && now > t.lastTime {
		t.frameDelta = float64(now - t.lastTime)
	}

	t.lastTime = now
	t.hasLast = true
}

func (t *Tracker) checkFullSync(r float64, now timing.VTimeInMs) {
	sync := IsFullSync(r)
	rising := sync && !t.inSync
	t.inSync = sync

	if !rising || t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosFullSync,
		Time:   float64(now),
		Item:   r,
	})
}

// AdjustHistoryLength resizes the long buffer to cover 1.2 recurrences at
// frame delta dt. Without a finite prediction the default capacity is used.
// The buffer is trimmed to its newest samples immediately.
func (t *Tracker) AdjustHistoryLength(restart float64, finite bool, dt float64) {
	t.long.SetCapacity(t.longCapacityFor(restart, finite, dt))
}

func (t *Tracker) longCapacityFor(restart float64, finite bool, dt float64) int {
	if !finite || restart <= 0 || dt <= 0 ||
		math.IsNaN(restart) || math.IsInf(restart, 0) {
		return t.defaultLong
	}

	n := math.Ceil(restart * historyMargin / dt)
	if math.IsNaN(n) || n > MaxLongHistory {
		return MaxLongHistory
	}

	if n < 1 {
		return 1
	}

	return int(n)
}

// Clear empties both buffers and restores the default capacities.
func (t *Tracker) Clear() {
	t.long.Clear()
	t.short.Clear()
	t.long.SetCapacity(t.defaultLong)

	t.hasLast = false
	t.frameDelta = 0
	t.inSync = false
}
