package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/ledger"
	"github.com/HillyAttic/opsboard/core/report"
	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/task"
	"github.com/HillyAttic/opsboard/core/user"
)

type taskApi struct {
	svc       *task.Service
	ledgerSvc *ledger.Service
	reportSvc *report.Service
	usrSvc    *user.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := taskApi{
		svc:       deps.TaskSvc,
		ledgerSvc: deps.LedgerSvc,
		reportSvc: deps.ReportSvc,
		usrSvc:    deps.UserSvc,
	}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, managerMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, managerMiddleware())
	tg.DELETE("/:id", api.destroy, managerMiddleware())
	tg.POST("/:id/pause", api.pause, managerMiddleware())
	tg.POST("/:id/resume", api.resume, managerMiddleware())

	tg.GET("/:id/occurrences", api.occurrences)
	tg.GET("/:id/grid", api.grid)
	tg.PUT("/:id/completions", api.setCompletion)
	tg.DELETE("/:id/completions", api.clearCompletion)
}

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tsk, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, tsk)
}

func (api *taskApi) query(ctx echo.Context) error {
	filter := new(task.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}
	filter.Clean()

	// staff only see the tasks assigned to them
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsManager()) {
		filter.AssigneeID = ctxUsr.ID
	}

	var tasks []task.Task
	if filter.IsEmpty() {
		tasks, err = api.svc.QueryAll()
	} else {
		tasks, err = api.svc.Filter(*filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	tsk, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) update(ctx echo.Context) error {
	tsk, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(tsk); err != nil {
		return err
	}

	tsk, err = api.svc.Update(tsk.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) pause(ctx echo.Context) error {
	tsk, err := api.svc.Pause(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) resume(ctx echo.Context) error {
	tsk, err := api.svc.Resume(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) occurrences(ctx echo.Context) error {
	tsk, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}

	window := new(windowQuery)
	if err := window.Bind(ctx); err != nil {
		return err
	}

	occs, err := schedule.Expand(tsk.Recurrence, window.Start(), window.End())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, occs)
}

func (api *taskApi) grid(ctx echo.Context) error {
	window := new(windowQuery)
	if err := window.Bind(ctx); err != nil {
		return err
	}

	grid, err := api.reportSvc.CompletionGrid(ctx.Param("id"), window.Start(), window.End())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grid)
}

type completionRequest struct {
	EntityID  string `json:"entity_id" query:"entity_id" validate:"required"`
	PeriodKey string `json:"period_key" query:"period_key" validate:"required"`
}

func (api *taskApi) setCompletion(ctx echo.Context) error {
	var data completionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to completionRequest")
	}

	// the completing actor is the authenticated user
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	rec, err := api.ledgerSvc.SetCompletion(ctx.Param("id"), data.EntityID, data.PeriodKey, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *taskApi) clearCompletion(ctx echo.Context) error {
	var data completionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to completionRequest")
	}

	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.ledgerSvc.ClearCompletion(ctx.Param("id"), data.EntityID, data.PeriodKey); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
