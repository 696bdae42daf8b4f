// Package rational approximates decimal numbers by fractions using continued
// fraction expansion.
package rational

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

const (
	// DefaultTolerance is the relative error accepted by ToFraction.
	DefaultTolerance = 1e-6

	// DefaultMaxIterations bounds the continued fraction expansion.
	DefaultMaxIterations = 64

	// maxExact is the largest integer a float64 holds exactly.
	maxExact = 1 << 53

	// maxInteger is 2^63, the first float64 integer an int64 cannot hold.
	maxInteger = 1 << 63
)

var (
	// ErrDidNotConverge indicates that no convergent within the tolerance
	// was found before the iteration cap or before the convergents left the
	// exactly representable range.
	ErrDidNotConverge = errors.New("rational: approximation did not converge")

	// ErrNotFinite indicates a NaN or infinite input.
	ErrNotFinite = errors.New("rational: value is not finite")

	// ErrOutOfRange indicates an input too large to be held as an int64
	// numerator.
	ErrOutOfRange = errors.New("rational: value out of range")
)

// A Fraction is Numerator / Denominator with a positive denominator.
type Fraction struct {
	Numerator   int64
	Denominator int64
}

// Float64 returns the value of the fraction.
func (f Fraction) Float64() float64 {
	return float64(f.Numerator) / float64(f.Denominator)
}

// Rat returns the fraction as a big.Rat.
func (f Fraction) Rat() *big.Rat {
	return big.NewRat(f.Numerator, f.Denominator)
}

// String formats the fraction as n/d.
func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// An Approximator converts decimals to fractions.
type Approximator struct {
	// Tolerance is the accepted error relative to the input. A non-positive
	// value selects DefaultTolerance.
	Tolerance float64

	// MaxIterations caps the expansion. A non-positive value selects
	// DefaultMaxIterations.
	MaxIterations int
}

// ToFraction approximates decimal with the default approximator settings.
func ToFraction(decimal, tolerance float64) (Fraction, error) {
	a := Approximator{Tolerance: tolerance}
	return a.ToFraction(decimal)
}

// ToFraction returns the first continued fraction convergent h/k for which
// |decimal − h/k| ≤ |decimal| × tolerance. Integers are returned as n/1.
func (a Approximator) ToFraction(decimal float64) (Fraction, error) {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return Fraction{}, ErrNotFinite
	}

	if decimal == math.Trunc(decimal) {
		if math.Abs(decimal) >= maxInteger {
			return Fraction{}, fmt.Errorf("%w: %g", ErrOutOfRange, decimal)
		}

		return Fraction{Numerator: int64(decimal), Denominator: 1}, nil
	}

	if math.Abs(decimal) >= maxExact {
		return Fraction{}, fmt.Errorf("%w: %g", ErrOutOfRange, decimal)
	}

	tolerance := a.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	maxIter := a.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	sign := int64(1)
	x := decimal
	if x < 0 {
		sign = -1
		x = -x
	}

	f, err := expand(x, tolerance, maxIter)
	if err != nil {
		return Fraction{}, fmt.Errorf("%w: %g", err, decimal)
	}

	f.Numerator *= sign

	return f, nil
}

func expand(x, tolerance float64, maxIter int) (Fraction, error) {
	h1, h2 := 1.0, 0.0
	k1, k2 := 0.0, 1.0
	b := x

	for i := 0; i < maxIter; i++ {
		a := math.Floor(b)

		h1, h2 = a*h1+h2, h1
		k1, k2 = a*k1+k2, k1

		if h1 > maxExact || k1 > maxExact {
			return Fraction{}, ErrDidNotConverge
		}

		if math.Abs(x-h1/k1) <= x*tolerance {
			return Fraction{Numerator: int64(h1), Denominator: int64(k1)}, nil
		}

		residual := b - a
		if residual == 0 {
			break
		}

		b = 1 / residual
	}

	return Fraction{}, ErrDidNotConverge
}
