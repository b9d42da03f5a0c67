package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HillyAttic/opsboard/core"
	"github.com/HillyAttic/opsboard/core/schedule"
)

// windowQuery binds the `from`/`to` occurrence window query params.
// Both default to the current calendar year when absent: the dashboard's
// default view is the year grid.
type windowQuery struct {
	From string `query:"from"`
	To   string `query:"to"`

	start time.Time
	end   time.Time
}

func (wq *windowQuery) Bind(ctx echo.Context) error {
	if err := ctx.Bind(wq); err != nil {
		return core.NewValidationError(schedule.ErrInvalidWindow)
	}

	year := schedule.Today().Year()
	wq.start = schedule.Date(year, time.January, 1)
	wq.end = schedule.Date(year, time.December, 31)

	var err error
	if wq.From != "" {
		if wq.start, err = schedule.ParseDate(wq.From); err != nil {
			return core.NewValidationError(schedule.ErrInvalidWindow,
				core.FieldError{Field: "from", Error: "invalid date; expected YYYY-MM-DD"})
		}
	}
	if wq.To != "" {
		if wq.end, err = schedule.ParseDate(wq.To); err != nil {
			return core.NewValidationError(schedule.ErrInvalidWindow,
				core.FieldError{Field: "to", Error: "invalid date; expected YYYY-MM-DD"})
		}
	}
	if wq.start.After(wq.end) {
		return core.NewValidationError(schedule.ErrInvalidWindow,
			core.FieldError{Field: "from", Error: "must not be after 'to'"})
	}
	return nil
}

func (wq *windowQuery) Start() time.Time { return wq.start }
func (wq *windowQuery) End() time.Time   { return wq.end }
