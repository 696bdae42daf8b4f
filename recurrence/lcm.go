// Package recurrence predicts when a group of oscillators returns to its
// initial configuration.
//
// The recurrence time is the least common multiple of all periods. Periods
// that are not integers are first turned into fractions, so the LCM is taken
// over rationals: scale every period by the LCM of the denominators, take the
// integer LCM, and scale back down.
package recurrence

import (
	"errors"
	"math"
	"math/big"

	"github.com/sarchlab/orbitsync/rational"
)

var (
	// ErrRecurrenceTooLarge indicates that the recurrence time cannot be
	// represented.
	ErrRecurrenceTooLarge = errors.New("recurrence: recurrence time overflow")

	// ErrNoRecurrence indicates that fewer than two oscillators are given, so
	// no multi-body recurrence is defined.
	ErrNoRecurrence = errors.New("recurrence: at least two oscillators are required")
)

// GCD returns the greatest common divisor using the Euclidean algorithm.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b. It returns
// ErrRecurrenceTooLarge if the result does not fit in 64 bits.
func LCM(a, b uint64) (uint64, error) {
	g := GCD(a, b)
	if g == 0 {
		return 0, nil
	}

	quotient := a / g
	if b != 0 && quotient > math.MaxUint64/b {
		return 0, ErrRecurrenceTooLarge
	}

	return quotient * b, nil
}

// SeriesLCM returns the LCM of start, start+increment, ...,
// start+(steps-1)·increment. With fewer than one step it returns start.
func SeriesLCM(start, steps, increment uint64) (uint64, error) {
	if steps < 1 {
		return start, nil
	}

	result := start
	for i := uint64(1); i < steps; i++ {
		offset, ok := mulChecked(i, increment)
		if !ok {
			return 0, ErrRecurrenceTooLarge
		}

		next, ok := addChecked(start, offset)
		if !ok {
			return 0, ErrRecurrenceTooLarge
		}

		var err error
		result, err = LCM(result, next)
		if err != nil {
			return 0, err
		}
	}

	return result, nil
}

func addChecked(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

func mulChecked(a, b uint64) (uint64, bool) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, false
	}
	return a * b, true
}

func bigLCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}

	g := new(big.Int).GCD(nil, nil, a, b)
	l := new(big.Int).Div(a, g)
	l.Mul(l, b)

	return l.Abs(l)
}

// LCMOfFractions returns the least common multiple of positive fractions.
func LCMOfFractions(fractions []rational.Fraction) *big.Rat {
	denominators := big.NewInt(1)
	for _, f := range fractions {
		denominators = bigLCM(denominators, big.NewInt(f.Denominator))
	}

	result := big.NewInt(1)
	for _, f := range fractions {
		scaled := new(big.Int).Div(denominators, big.NewInt(f.Denominator))
		scaled.Mul(scaled, big.NewInt(f.Numerator))
		result = bigLCM(result, scaled)
	}

	return new(big.Rat).SetFrac(result, denominators)
}

func ratToFloat(r *big.Rat) (float64, error) {
	f, _ := r.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrRecurrenceTooLarge
	}

	return f, nil
}
