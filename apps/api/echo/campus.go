package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core/campus"
)

type campusApi struct {
	svc *campus.Service
}

func registerCampusAPI(g *echo.Group, svc *campus.Service) {
	api := campusApi{svc: svc}

	g.GET("/campus-location", api.retrieve)
	g.POST("/campus-location", api.upsert, adminMiddleware())
}

func (api *campusApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Get(ctx.Request().Context()))
}

func (api *campusApi) upsert(ctx echo.Context) error {
	var data locationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to locationRequest")
	}

	loc, err := api.svc.Upsert(ctx.Request().Context(), data.update())
	if err != nil {
		return errors.Wrap(err, "saving campus location")
	}
	return ctx.JSON(http.StatusOK, loc)
}
