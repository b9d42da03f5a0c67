package report

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/schedule"
)

// CalendarFeed renders every task occurrence in [windowStart, windowEnd] as
// an ICS calendar, one all-day VEVENT per occurrence. Occurrences are emitted
// explicitly rather than as RRULEs because the month-end clamping of the
// scheduler has no RRULE equivalent; the feed stays a plain projection of
// Expand output.
func (svc *Service) CalendarFeed(windowStart, windowEnd time.Time) (string, error) {
	tasks, err := svc.taskSvc.QueryAll()
	if err != nil {
		return "", errors.Wrap(err, "querying tasks for calendar feed")
	}

	now := svc.nowFunc().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//opsboard//task calendar//EN")

	for _, tsk := range tasks {
		occs, err := schedule.Expand(tsk.Recurrence, windowStart, windowEnd)
		if err != nil {
			// a malformed definition must never take down the whole feed
			svc.logger.Warn(fmt.Sprintf("calendar feed: skipping task %s: %v", tsk.ID, err), err)
			continue
		}
		for _, occ := range occs {
			ev := cal.AddEvent(fmt.Sprintf("%s/%s", tsk.ID, occ.PeriodKey))
			ev.SetDtStampTime(now)
			ev.SetAllDayStartAt(occ.Date)
			ev.SetAllDayEndAt(occ.Date.AddDate(0, 0, 1))
			ev.SetSummary(fmt.Sprintf("[%s] %s", tsk.Recurrence.Pattern.Badge(), tsk.Title))
			if tsk.Notes != "" {
				ev.SetDescription(tsk.Notes)
			}
		}
	}
	return cal.Serialize(), nil
}
