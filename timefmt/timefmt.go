// Package timefmt renders durations in milliseconds for display.
//
// Format gives a precise breakdown such as "2d 3h 5s 007ms". FormatResetTime
// buckets the time until the next recurrence into coarse bands. Non-finite
// durations never reach the output as NaN or Inf.
package timefmt

import (
	"math"
	"strconv"
	"strings"
)

const (
	msPerSecond = 1000.0
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
	msPerYear   = 365 * msPerDay

	// AgeOfUniverseYears is the threshold, in years, above which Format
	// switches to scientific notation with a warning.
	AgeOfUniverseYears = 14_000_000
)

const (
	// Unbounded is the text used for durations that never finish.
	Unbounded = "∞ (unbounded)"

	// AgeOfUniverseWarning is appended to durations longer than the age of
	// the universe.
	AgeOfUniverseWarning = "⚠️ (> age of universe!)"
)

// Years converts milliseconds to 365-day years.
func Years(ms float64) float64 {
	return ms / msPerYear
}

// Format returns the duration as its non-zero leading components followed
// by seconds and zero-padded milliseconds, e.g. "1y 4d 5h 3s 020ms".
// Durations beyond AgeOfUniverseYears are given in years in scientific
// notation with a warning.
func Format(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return Unbounded
	}

	if ms < 0 {
		ms = 0
	}

	years := Years(ms)
	if years > AgeOfUniverseYears {
		return exponential(years) + "y " + AgeOfUniverseWarning
	}

	msRemaining := math.Floor(math.Mod(ms, msPerSecond))
	seconds := math.Floor(ms / msPerSecond)
	minutes := math.Floor(seconds / 60)
	hours := math.Floor(minutes / 60)
	days := math.Floor(hours / 24)
	wholeYears := math.Floor(days / 365)

	parts := make([]string, 0, 6)

	if wholeYears > 0 {
		parts = append(parts, integer(wholeYears)+"y")
		if d := math.Mod(days, 365); d > 0 {
			parts = append(parts, integer(d)+"d")
		}
	} else if days > 0 {
		parts = append(parts, integer(days)+"d")
	}

	if h := math.Mod(hours, 24); h > 0 {
		parts = append(parts, integer(h)+"h")
	}

	if m := math.Mod(minutes, 60); m > 0 {
		parts = append(parts, integer(m)+"m")
	}

	parts = append(parts, integer(math.Mod(seconds, 60))+"s")
	parts = append(parts, padded(msRemaining, 3)+"ms")

	return strings.Join(parts, " ")
}

func integer(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func padded(v float64, width int) string {
	s := integer(v)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// exponential formats v with three decimals and a bare exponent, e.g.
// "1.234e7".
func exponential(v float64) string {
	s := strconv.FormatFloat(v, 'e', 3, 64)

	mantissa, exp, found := strings.Cut(s, "e")
	if !found {
		return s
	}

	n, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}

	return mantissa + "e" + strconv.Itoa(n)
}
