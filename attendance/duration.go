/*
duration.go - Shift duration from clock-in/clock-out times

PURPOSE:
  Computes the length of a completed shift from two time-of-day
  strings. Records store only times of day, so a shift that crossed
  midnight shows time_out < time_in.

MIDNIGHT ROLLOVER:
  When time_out sorts before time_in, 24 hours are added before
  subtracting. This is a heuristic: it cannot distinguish a genuine
  overnight shift from a reversed or mistyped entry, and the record's
  date is never adjusted. The behavior is kept as-is; do not "fix" it
  without changing the stored model to full timestamps.

SEE ALSO:
  - report.go: Annotates per-employee reports with these values
*/
package attendance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DurationMinutes returns the shift length in whole minutes, rounded
// to nearest. The second return is false when timeOut is absent or
// either value does not parse as a time of day; that is "unknown",
// not an error. The result is never negative under the rollover
// assumption.
func DurationMinutes(timeIn, timeOut string) (int, bool) {
	if timeOut == "" {
		return 0, false
	}
	in, err := time.Parse(TimeLayout, timeIn)
	if err != nil {
		return 0, false
	}
	out, err := time.Parse(TimeLayout, timeOut)
	if err != nil {
		return 0, false
	}

	if out.Before(in) {
		// Shift crossed midnight.
		out = out.Add(24 * time.Hour)
	}

	minutes := int(math.Round(out.Sub(in).Minutes()))
	return minutes, true
}

// DurationHours converts whole minutes to decimal hours rounded to
// two places, for report display.
func DurationHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).
		Div(decimal.NewFromInt(60)).
		Round(2)
}
