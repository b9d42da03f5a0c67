package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrInvalidDefinition = errors.New("invalid recurrence definition")
	ErrInvalidWindow     = errors.New("invalid occurrence window")
)

// Pattern is the repetition cadence of a recurring task.
type Pattern string

const (
	PatternMonthly    Pattern = "monthly"
	PatternQuarterly  Pattern = "quarterly"
	PatternHalfYearly Pattern = "half-yearly"
	PatternYearly     Pattern = "yearly"
)

type patternInfo struct {
	stepMonths int
	label      string
	badge      string
}

var patternInfos = map[Pattern]patternInfo{
	PatternMonthly:    {1, "Monthly", "M"},
	PatternQuarterly:  {3, "Quarterly", "Q"},
	PatternHalfYearly: {6, "Half-Yearly", "H"},
	PatternYearly:     {12, "Yearly", "Y"},
}

// AllPatterns returns the known patterns in ascending step order.
func AllPatterns() []Pattern {
	return []Pattern{PatternMonthly, PatternQuarterly, PatternHalfYearly, PatternYearly}
}

func (p Pattern) IsValid() bool {
	_, ok := patternInfos[p]
	return ok
}

// StepMonths returns the number of months between two successive occurrences.
func (p Pattern) StepMonths() int {
	return patternInfos[p].stepMonths
}

// Label returns the display name for UI consumption.
func (p Pattern) Label() string {
	return patternInfos[p].label
}

// Badge returns the single-letter abbreviation used as a calendar badge.
func (p Pattern) Badge() string {
	return patternInfos[p].badge
}

// PeriodKey returns the canonical identifier of the calendar period containing
// `anchor`, e.g. "2026-01", "2026-Q1", "2026-H2" or "2026". It depends only on
// the anchor's calendar position, never on the query window.
func (p Pattern) PeriodKey(anchor time.Time) string {
	switch p {
	case PatternMonthly:
		return anchor.Format("2006-01")
	case PatternQuarterly:
		return fmt.Sprintf("%d-Q%d", anchor.Year(), (int(anchor.Month())-1)/3+1)
	case PatternHalfYearly:
		half := 1
		if anchor.Month() > time.June {
			half = 2
		}
		return fmt.Sprintf("%d-H%d", anchor.Year(), half)
	case PatternYearly:
		return strconv.Itoa(anchor.Year())
	}
	return ""
}

// Recurrence describes how a task repeats. Dates are date-level only;
// time-of-day and timezone are stripped at the boundary (see NormalizeDate).
type Recurrence struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date,omitempty"` // zero value = open-ended
	Pattern   Pattern   `json:"pattern"`
	Paused    bool      `json:"paused"`
}

// Validate rejects unknown patterns and a missing start date.
// EndDate before StartDate is not an error: it is reachable via data entry
// and expands to zero occurrences instead of failing the caller.
func (r Recurrence) Validate() error {
	if !r.Pattern.IsValid() {
		return errors.Wrapf(ErrInvalidDefinition, "unknown pattern %q", string(r.Pattern))
	}
	if r.StartDate.IsZero() {
		return errors.Wrap(ErrInvalidDefinition, "missing start date")
	}
	return nil
}

// Normalized returns a copy with all dates reduced to the canonical
// date-only representation.
func (r Recurrence) Normalized() Recurrence {
	r.StartDate = NormalizeDate(r.StartDate)
	if !r.EndDate.IsZero() {
		r.EndDate = NormalizeDate(r.EndDate)
	}
	return r
}

// Occurrence is one concrete due-instance a recurring task produces.
// Occurrences are never persisted; they are recomputed on every query.
type Occurrence struct {
	PeriodKey string    `json:"period_key"`
	Date      time.Time `json:"date"`
}

// Status classifies an occurrence against the completion ledger.
type Status string

const (
	StatusFuture    Status = "future"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	// StatusUnknown is the degraded classification used when the ledger
	// cannot be read; occurrence computation itself never fails on storage.
	StatusUnknown Status = "unknown"
)

// Classify applies the classification rule shared by the calendar, reports
// and completion-tracking consumers: completed wins; otherwise an occurrence
// due strictly after `today` is future, anything else (today included) is
// pending.
func Classify(occ Occurrence, completed bool, today time.Time) Status {
	if completed {
		return StatusCompleted
	}
	if occ.Date.After(NormalizeDate(today)) {
		return StatusFuture
	}
	return StatusPending
}
