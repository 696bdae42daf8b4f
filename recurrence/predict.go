package recurrence

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/sarchlab/orbitsync/rational"
	"github.com/sarchlab/orbitsync/timing"
)

// PredictSystemRestart returns the recurrence time of numOscillators
// oscillators whose periods are evenly spaced from minPeriod to maxPeriod.
//
// With k = numOscillators − 1 the k-scaled periods form the series
// k·min, k·min + ΔT, ..., k·min + k·ΔT where ΔT = max − min, and the result
// is LCM(series) / k. The formula is only meaningful for evenly spaced
// periods. The caller is responsible for checking that.
func PredictSystemRestart(
	numOscillators int,
	minPeriod, maxPeriod float64,
) (float64, error) {
	k := numOscillators - 1
	if k < 1 {
		return 0, ErrNoRecurrence
	}

	if err := timing.Period(minPeriod).Validate(); err != nil {
		return 0, err
	}

	if err := timing.Period(maxPeriod).Validate(); err != nil {
		return 0, err
	}

	if maxPeriod < minPeriod {
		return 0, fmt.Errorf("%w: max period %v below min period %v",
			timing.ErrInvalidPeriod, maxPeriod, minPeriod)
	}

	deltaT := maxPeriod - minPeriod
	bk := float64(k) * minPeriod

	series := make([]float64, 0, k+1)
	for i := 0; i <= k; i++ {
		series = append(series, bk+float64(i)*deltaT)
	}

	l, err := lcmOfDecimals(series)
	if err != nil {
		return 0, err
	}

	l.Quo(l, new(big.Rat).SetInt64(int64(k)))

	return ratToFloat(l)
}

// Recurrence returns the least common multiple of arbitrary periods. Every
// period must be valid. A single invalid period fails the whole set.
func Recurrence(periods []float64) (float64, error) {
	if len(periods) < 2 {
		return 0, ErrNoRecurrence
	}

	for _, p := range periods {
		if err := timing.Period(p).Validate(); err != nil {
			return 0, err
		}
	}

	l, err := lcmOfDecimals(periods)
	if err != nil {
		return 0, err
	}

	return ratToFloat(l)
}

func lcmOfDecimals(values []float64) (*big.Rat, error) {
	fractions := make([]rational.Fraction, 0, len(values))

	for _, v := range values {
		f, err := rational.ToFraction(v, rational.DefaultTolerance)
		if err != nil {
			return nil, err
		}

		if f.Numerator <= 0 {
			return nil, fmt.Errorf("%w: %v", timing.ErrInvalidPeriod, v)
		}

		fractions = append(fractions, f)
	}

	return LCMOfFractions(fractions), nil
}

// UniformPeriods checks whether the periods, in any order, form an
// arithmetic progression. It returns the minimum and maximum if so.
func UniformPeriods(periods []float64) (minPeriod, maxPeriod float64, ok bool) {
	if len(periods) < 2 {
		return 0, 0, false
	}

	sorted := make([]float64, len(periods))
	copy(sorted, periods)
	sort.Float64s(sorted)

	minPeriod = sorted[0]
	maxPeriod = sorted[len(sorted)-1]
	step := (maxPeriod - minPeriod) / float64(len(sorted)-1)
	tolerance := math.Abs(maxPeriod) * rational.DefaultTolerance

	for i, p := range sorted {
		want := minPeriod + float64(i)*step
		if math.Abs(p-want) > tolerance {
			return 0, 0, false
		}
	}

	return minPeriod, maxPeriod, true
}

// NextReset returns the time left until the next recurrence.
func NextReset(elapsed timing.VTimeInMs, recurrence float64) float64 {
	if math.IsInf(recurrence, 1) {
		return recurrence
	}

	if recurrence <= 0 || math.IsNaN(recurrence) {
		return 0
	}

	return recurrence - math.Mod(float64(elapsed), recurrence)
}
