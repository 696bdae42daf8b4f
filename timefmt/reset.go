package timefmt

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Band is a coarse duration class used for countdown displays.
type Band int

// The bands, from shortest to longest.
const (
	BandSeconds Band = iota
	BandMinutes
	BandHours
	BandDays
	BandYears
	BandMillennium
	BandCosmic
	BandUnbounded
)

// Labels of the two longest bands.
const (
	CosmicLabel     = "🌌 Cosmic Scale Time"
	MillenniumLabel = "🚀 Millenniums!"
)

const (
	cosmicYears     = 1e10
	millenniumYears = 1000
)

var bandNames = map[Band]string{
	BandSeconds:    "seconds",
	BandMinutes:    "minutes",
	BandHours:      "hours",
	BandDays:       "days",
	BandYears:      "years",
	BandMillennium: "millennium",
	BandCosmic:     "cosmic",
	BandUnbounded:  "unbounded",
}

// String returns the band name.
func (b Band) String() string {
	if name, ok := bandNames[b]; ok {
		return name
	}
	return "unknown"
}

// ParseBand returns the band with the given name.
func ParseBand(name string) (Band, error) {
	for b, n := range bandNames {
		if strings.EqualFold(n, name) {
			return b, nil
		}
	}

	return 0, fmt.Errorf("timefmt: unknown band %q", name)
}

// BandOf classifies a duration in milliseconds.
func BandOf(ms float64) Band {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return BandUnbounded
	}

	years := Years(ms)

	switch {
	case years > cosmicYears:
		return BandCosmic
	case years > millenniumYears:
		return BandMillennium
	case years > 1:
		return BandYears
	case ms > msPerDay:
		return BandDays
	case ms > msPerHour:
		return BandHours
	case ms > msPerMinute:
		return BandMinutes
	default:
		return BandSeconds
	}
}

// FormatResetTime renders the time until the next recurrence in a coarse
// band: the cosmic and millennium labels, whole years, "Xd Yh", "Xh Ym",
// "M:SS.cc" or "S.ccs".
func FormatResetTime(ms float64) string {
	band := BandOf(ms)
	if band == BandUnbounded {
		return "∞"
	}

	if ms < 0 {
		ms = 0
	}

	centis := math.Floor(math.Mod(ms, msPerSecond) / 10)
	seconds := math.Floor(ms / msPerSecond)

	switch band {
	case BandCosmic:
		return CosmicLabel
	case BandMillennium:
		return MillenniumLabel
	case BandYears:
		years := int64(Years(ms))
		if years == 1 {
			return "1 year"
		}
		return humanize.Comma(years) + " years"
	case BandDays:
		days := math.Floor(ms / msPerDay)
		hours := math.Floor(math.Mod(ms, msPerDay) / msPerHour)
		return fmt.Sprintf("%.0fd %.0fh", days, hours)
	case BandHours:
		hours := math.Floor(ms / msPerHour)
		minutes := math.Floor(math.Mod(ms, msPerHour) / msPerMinute)
		return fmt.Sprintf("%.0fh %.0fm", hours, minutes)
	case BandMinutes:
		minutes := math.Floor(seconds / 60)
		return fmt.Sprintf("%.0f:%02.0f.%02.0f",
			minutes, math.Mod(seconds, 60), centis)
	default:
		return fmt.Sprintf("%.0f.%02.0fs", seconds, centis)
	}
}
