// Package orderparam measures how synchronized a group of oscillators is.
//
// The order parameter is the magnitude of the mean of the unit vectors
// e^{iφ} of all phases. It is 1 when every phase is identical and 0 when the
// phases cancel out, e.g. at symmetric roots of unity.
package orderparam

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/sarchlab/orbitsync/timing"
)

// ErrEmptyOscillatorSet indicates that there is no phase to measure.
var ErrEmptyOscillatorSet = errors.New("orderparam: no oscillators to measure")

// FullSyncTolerance is how close to 1 the order parameter must be to count
// as full synchronization.
const FullSyncTolerance = 0.001

// Compute returns the order parameter of the given phases. Non-finite phases
// are skipped.
func Compute(phases []float64) (float64, error) {
	var sum complex128
	n := 0

	for _, phase := range phases {
		if math.IsNaN(phase) || math.IsInf(phase, 0) {
			continue
		}

		sum += cmplx.Rect(1, phase)
		n++
	}

	if n == 0 {
		return 0, ErrEmptyOscillatorSet
	}

	r := cmplx.Abs(sum / complex(float64(n), 0))

	return math.Min(r, 1), nil
}

// Angles returns the angle of every oscillator with a valid period at the
// given time. Oscillators with invalid periods are left out.
func Angles(oscillators []timing.Oscillator, elapsed timing.VTimeInMs) []float64 {
	angles := make([]float64, 0, len(oscillators))

	for _, o := range oscillators {
		angle, err := o.Angle(elapsed)
		if err != nil {
			continue
		}

		angles = append(angles, angle)
	}

	return angles
}

// ComputeAt returns the order parameter of the oscillators at the given
// time, skipping oscillators with invalid periods.
func ComputeAt(
	oscillators []timing.Oscillator,
	elapsed timing.VTimeInMs,
) (float64, error) {
	return Compute(Angles(oscillators, elapsed))
}

// IsFullSync checks whether r is within FullSyncTolerance of 1.
func IsFullSync(r float64) bool {
	return math.Abs(r-1) < FullSyncTolerance
}
