// Package timing converts externally supplied elapsed time into oscillator
// phase angles. The package does not own a clock. Callers pass the elapsed
// time of the current frame and receive the angle of each oscillator.
package timing

import (
	"errors"
	"fmt"
	"math"
)

// VTimeInMs is an elapsed time in milliseconds.
type VTimeInMs float64

// Period is the time, in milliseconds, an oscillator takes to complete one
// revolution.
type Period float64

// TwoPi is a full revolution in radians.
const TwoPi = 2 * math.Pi

// ReferenceTop is the reference phase that places angle 0 at the
// 12-o'clock position, with the oscillator moving clockwise from there.
const ReferenceTop = -math.Pi / 2

var (
	// ErrInvalidPeriod indicates a period that is zero, negative, NaN or
	// infinite.
	ErrInvalidPeriod = errors.New("timing: period must be positive and finite")

	// ErrInvalidTime indicates an elapsed time that is negative, NaN or
	// infinite.
	ErrInvalidTime = errors.New("timing: elapsed time must be non-negative and finite")
)

// Validate returns ErrInvalidPeriod if p cannot drive an oscillator.
func (p Period) Validate() error {
	v := float64(p)
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPeriod, v)
	}

	return nil
}

// Frequency returns the number of revolutions per second.
func (p Period) Frequency() float64 {
	return 1000 / float64(p)
}

func (t VTimeInMs) validate() error {
	v := float64(t)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTime, v)
	}

	return nil
}

// Phase returns the phase angle in [0, 2π) reached after elapsed
// milliseconds by an oscillator with the given period.
//
//	angle = 2π × (elapsed / period) mod 2π
//
// The remainder is taken on the time axis first so that large elapsed
// times keep their sub-period precision.
func Phase(elapsed VTimeInMs, period Period) (float64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	if err := elapsed.validate(); err != nil {
		return 0, err
	}

	inPeriod := math.Mod(float64(elapsed), float64(period))
	angle := inPeriod / float64(period) * TwoPi

	if angle >= TwoPi {
		angle = 0
	}

	return angle, nil
}

// NormalizeAngle maps any finite angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, TwoPi)
	if a < 0 {
		a += TwoPi
	}

	if a >= TwoPi {
		a = 0
	}

	return a
}
