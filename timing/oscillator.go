package timing

import "math"

// An Oscillator revolves with a fixed period. Its visual angle is the phase
// shifted by ReferencePhase.
type Oscillator struct {
	Period         Period
	ReferencePhase float64
}

// NewOscillator creates an oscillator that starts at the top position.
func NewOscillator(period Period) Oscillator {
	return Oscillator{
		Period:         period,
		ReferencePhase: ReferenceTop,
	}
}

// Phase returns the un-shifted phase of the oscillator at the given time.
func (o Oscillator) Phase(elapsed VTimeInMs) (float64, error) {
	return Phase(elapsed, o.Period)
}

// Angle returns the phase plus the reference phase, in [0, 2π).
func (o Oscillator) Angle(elapsed VTimeInMs) (float64, error) {
	phase, err := Phase(elapsed, o.Period)
	if err != nil {
		return 0, err
	}

	return NormalizeAngle(phase + o.ReferencePhase), nil
}

// Revolutions returns how many full revolutions have been completed.
func (o Oscillator) Revolutions(elapsed VTimeInMs) (uint64, error) {
	if err := o.Period.Validate(); err != nil {
		return 0, err
	}

	if err := elapsed.validate(); err != nil {
		return 0, err
	}

	return uint64(math.Floor(float64(elapsed) / float64(o.Period))), nil
}

// TimeToNextTop returns how long until the oscillator next reaches the top
// position, where sin(angle) = -1. It returns 0 if the oscillator is exactly
// at the top.
func TimeToNextTop(elapsed VTimeInMs, o Oscillator) (VTimeInMs, error) {
	phase, err := o.Phase(elapsed)
	if err != nil {
		return 0, err
	}

	target := NormalizeAngle(ReferenceTop - o.ReferencePhase)
	delta := NormalizeAngle(target - phase)

	return VTimeInMs(delta / TwoPi * float64(o.Period)), nil
}
