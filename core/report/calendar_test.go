package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HillyAttic/opsboard/core/schedule"
)

func TestCalendarFeed(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "t1", "VAT filing", schedule.Recurrence{
		StartDate: schedule.Date(2026, time.January, 15),
		Pattern:   schedule.PatternQuarterly,
	})
	f.createTask(t, "t2", "Paused chore", schedule.Recurrence{
		StartDate: schedule.Date(2026, time.January, 1),
		Pattern:   schedule.PatternMonthly,
		Paused:    true,
	})

	feed, err := f.reportSvc.CalendarFeed(schedule.Date(2026, time.January, 1), schedule.Date(2026, time.June, 30))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Contains(t, feed, "METHOD:PUBLISH")
	assert.Contains(t, feed, "UID:t1/2026-Q1")
	assert.Contains(t, feed, "UID:t1/2026-Q2")
	assert.NotContains(t, feed, "2026-Q3") // outside window
	assert.NotContains(t, feed, "t2/")     // paused
	assert.Contains(t, feed, "SUMMARY:[Q] VAT filing")
	assert.Contains(t, feed, "DTSTART;VALUE=DATE:20260115")
}

func TestCalendarFeedSkipsBadDefinitions(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "t1", "Good", schedule.Recurrence{
		StartDate: schedule.Date(2026, time.March, 1),
		Pattern:   schedule.PatternMonthly,
	})
	f.createTask(t, "t2", "Broken", schedule.Recurrence{
		StartDate: schedule.Date(2026, time.March, 1),
		Pattern:   "weekly",
	})

	feed, err := f.reportSvc.CalendarFeed(schedule.Date(2026, time.March, 1), schedule.Date(2026, time.March, 31))
	require.NoError(t, err)
	assert.Contains(t, feed, "UID:t1/2026-03")
	assert.NotContains(t, feed, "t2/")
}
