package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerUserAPI(g *echo.Group) {
	g.GET("/me", me)
}

func me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}
