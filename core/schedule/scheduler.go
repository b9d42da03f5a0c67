package schedule

import (
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// Date builds a canonical date-only time value (midnight UTC).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NormalizeDate strips time-of-day and timezone from t. All scheduler
// arithmetic operates on this representation only, so identical inputs
// expand identically regardless of the caller's location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a date-only ("2006-01-02") or RFC3339 value and
// normalizes it.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return NormalizeDate(t), nil
}

// Today returns the current UTC date.
func Today() time.Time {
	return NormalizeDate(time.Now().UTC())
}

// Expand deterministically expands a recurrence definition into the ordered,
// deduplicated sequence of occurrences whose date falls within
// [windowStart, windowEnd].
//
// Period anchors are computed as startDate + k*step months, each clamped to
// the last valid day of its month (Jan 31 monthly yields Feb 28/29, never
// Mar 3). Anchors before windowStart are dropped from the result but still
// counted, so period keys never depend on the window. A paused definition
// yields zero occurrences until explicitly resumed (a mutation on the
// definition, not on this function). Pure function: no I/O, no mutation of
// inputs; identical arguments yield identical output.
func Expand(def Recurrence, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	windowStart = NormalizeDate(windowStart)
	windowEnd = NormalizeDate(windowEnd)
	if windowStart.After(windowEnd) {
		return nil, errors.Wrapf(ErrInvalidWindow, "start %s is after end %s",
			windowStart.Format(dateLayout), windowEnd.Format(dateLayout))
	}

	occs := make([]Occurrence, 0)
	if def.Paused {
		return occs, nil
	}

	def = def.Normalized()
	ceiling := windowEnd
	if !def.EndDate.IsZero() {
		if def.EndDate.Before(def.StartDate) {
			return occs, nil
		}
		if def.EndDate.Before(ceiling) {
			ceiling = def.EndDate
		}
	}

	step := def.Pattern.StepMonths()
	for k := 0; ; k++ {
		anchor := addMonths(def.StartDate, k*step)
		if anchor.After(ceiling) {
			break
		}
		if anchor.Before(windowStart) {
			continue
		}
		occs = append(occs, Occurrence{
			PeriodKey: def.Pattern.PeriodKey(anchor),
			Date:      anchor,
		})
	}
	return occs, nil
}

// addMonths adds `months` to d, clamping the day-of-month to the last valid
// day of the target month. Each anchor is derived from the original date, so
// a month-end start never drifts (Jan 31 + 2 months is Mar 31, not Mar 28).
func addMonths(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	first := Date(y, m+time.Month(months), 1)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return Date(first.Year(), first.Month(), day)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// day 0 of the next month
	return Date(year, month+1, 0).Day()
}
