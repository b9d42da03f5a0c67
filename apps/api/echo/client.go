package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/client"
)

type clientApi struct {
	svc *client.Service
}

func registerClientAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *client.Service) {
	api := clientApi{svc: svc}

	cg := g.Group("/clients", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, managerMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, managerMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *clientApi) create(ctx echo.Context) error {
	var data client.NewClient
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClient")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	clt, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating client")
	}
	return ctx.JSON(http.StatusCreated, clt)
}

func (api *clientApi) query(ctx echo.Context) error {
	clients, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying clients")
	}
	if clients == nil {
		clients = []client.Client{}
	}
	return ctx.JSON(http.StatusOK, clients)
}

func (api *clientApi) retrieve(ctx echo.Context) error {
	clt, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, clt)
}

func (api *clientApi) update(ctx echo.Context) error {
	clt, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}

	var data client.UpdateClient
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClient")
	}
	if err := data.Validate(clt, api.svc); err != nil {
		return err
	}

	clt, err = api.svc.Update(clt.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating client")
	}
	return ctx.JSON(http.StatusOK, clt)
}

func (api *clientApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting client")
	}
	return ctx.NoContent(http.StatusNoContent)
}
