package simulation

import (
	"context"
	"fmt"
	"sync"

	"github.com/sarchlab/orbitsync/timing"
)

// A Driver feeds a session with elapsed time at a fixed frame step, the way
// an animation loop would. It can be paused and continued from other
// goroutines.
type Driver struct {
	session *Session
	step    timing.VTimeInMs

	isPaused     bool
	isPausedLock sync.Mutex
	resumed      chan struct{}
	tickLock     sync.Mutex

	sessionLock sync.Mutex
	now         timing.VTimeInMs
	frames      uint64
	onFrame     func(Frame)
}

// NewDriver creates a driver that advances the session by step
// milliseconds per frame.
func NewDriver(session *Session, step timing.VTimeInMs) *Driver {
	if step <= 0 {
		panic("frame step must be positive")
	}

	return &Driver{
		session: session,
		step:    step,
	}
}

// OnFrame registers a function called with every produced frame, outside
// of the driver locks.
func (d *Driver) OnFrame(f func(Frame)) {
	d.onFrame = f
}

// Step returns the frame step.
func (d *Driver) Step() timing.VTimeInMs {
	return d.step
}

// Now returns the elapsed time of the next frame.
func (d *Driver) Now() timing.VTimeInMs {
	d.sessionLock.Lock()
	defer d.sessionLock.Unlock()

	return d.now
}

// Frames returns the number of frames produced.
func (d *Driver) Frames() uint64 {
	d.sessionLock.Lock()
	defer d.sessionLock.Unlock()

	return d.frames
}

// Inspect runs f while no frame is being produced.
func (d *Driver) Inspect(f func(s *Session)) {
	d.sessionLock.Lock()
	defer d.sessionLock.Unlock()

	f(d.session)
}

// Reset sets the elapsed time back to zero and resets the session.
func (d *Driver) Reset() {
	d.sessionLock.Lock()
	defer d.sessionLock.Unlock()

	d.now = 0
	d.frames = 0
	d.session.Reset()
}

// Pause stops the driver from producing more frames. A frame in progress
// is completed first.
func (d *Driver) Pause() {
	d.tickLock.Lock()
	defer d.tickLock.Unlock()

	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if d.isPaused {
		return
	}

	d.resumed = make(chan struct{})
	d.isPaused = true
}

// Continue allows the driver to produce frames again.
func (d *Driver) Continue() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if !d.isPaused {
		return
	}

	close(d.resumed)
	d.isPaused = false
}

// IsPaused tells whether the driver is paused.
func (d *Driver) IsPaused() bool {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	return d.isPaused
}

// Tick produces a single frame and moves the elapsed time forward. It
// waits while the driver is paused.
func (d *Driver) Tick() (Frame, error) {
	if err := d.waitWhilePaused(context.Background()); err != nil {
		return Frame{}, err
	}

	return d.tick()
}

// waitWhilePaused blocks until the driver is continued or ctx is done.
func (d *Driver) waitWhilePaused(ctx context.Context) error {
	for {
		d.isPausedLock.Lock()
		paused, resumed := d.isPaused, d.resumed
		d.isPausedLock.Unlock()

		if !paused {
			return nil
		}

		select {
		case <-resumed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Driver) tick() (Frame, error) {
	d.tickLock.Lock()
	d.sessionLock.Lock()
	now := d.now
	frame, err := d.session.Advance(now)
	d.now += d.step
	d.frames++
	d.sessionLock.Unlock()
	d.tickLock.Unlock()

	if err != nil {
		return frame, fmt.Errorf("simulation: frame at %v ms: %w", now, err)
	}

	if d.onFrame != nil {
		d.onFrame(frame)
	}

	return frame, nil
}

// Run produces frames until the elapsed time passes until or a frame fails.
// It returns the context error when ctx is done, also while paused.
func (d *Driver) Run(ctx context.Context, until timing.VTimeInMs) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := d.waitWhilePaused(ctx); err != nil {
			return err
		}

		if d.Now() > until {
			return nil
		}

		if _, err := d.tick(); err != nil {
			return err
		}
	}
}
