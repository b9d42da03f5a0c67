package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/report"
	"github.com/HillyAttic/opsboard/core/schedule"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	g.GET("/calendar.ics", api.calendar, jwt)
	g.GET("/reports/overdue", api.overdue, jwt, managerMiddleware())
	g.GET("/reports/overdue.csv", api.overdueCSV, jwt, managerMiddleware())
}

func (api *reportApi) calendar(ctx echo.Context) error {
	window := new(windowQuery)
	if err := window.Bind(ctx); err != nil {
		return err
	}

	feed, err := api.svc.CalendarFeed(window.Start(), window.End())
	if err != nil {
		return errors.Wrap(err, "rendering calendar feed")
	}
	return ctx.Blob(http.StatusOK, "text/calendar", []byte(feed))
}

func (api *reportApi) overdue(ctx echo.Context) error {
	items, err := api.svc.OverdueSummary(schedule.Today())
	if err != nil {
		return errors.Wrap(err, "computing overdue summary")
	}
	if items == nil {
		items = []report.OverdueItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *reportApi) overdueCSV(ctx echo.Context) error {
	items, err := api.svc.OverdueSummary(schedule.Today())
	if err != nil {
		return errors.Wrap(err, "computing overdue summary")
	}
	buf, err := report.OverdueCSV(items)
	if err != nil {
		return errors.Wrap(err, "rendering overdue CSV")
	}
	ctx.Response().Header().Set("Content-Disposition", `attachment; filename="overdue.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
