package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core/notification"
)

type notificationApi struct {
	svc             *notification.Service
	frontendBaseURL string
}

func registerNotificationAPI(g *echo.Group, svc *notification.Service, frontendBaseURL string) {
	api := notificationApi{svc: svc, frontendBaseURL: strings.TrimRight(frontendBaseURL, "/")}

	ng := g.Group("/notifications")
	ng.GET("", api.list)
	ng.GET("/summary", api.summary)
	ng.POST("/read", api.markRead)
	ng.POST("/threads/:threadId/read", api.markThreadRead)
	ng.GET("/:id/open", api.open)
}

type (
	markReadRequest struct {
		IDs []string `json:"ids"`
	}

	markReadResponse struct {
		Updated int `json:"updated"`
	}
)

func (api *notificationApi) list(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	ns, err := api.svc.List(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *notificationApi) summary(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.Summary(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing notifications")
	}
	return ctx.JSON(http.StatusOK, summary)
}

// markRead marks the given notifications read, or all of them without ids.
func (api *notificationApi) markRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data markReadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to markReadRequest")
	}

	n, err := api.svc.MarkRead(ctx.Request().Context(), usr.ID, data.IDs...)
	if err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, markReadResponse{Updated: n})
}

func (api *notificationApi) markThreadRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.MarkThreadRead(ctx.Request().Context(), usr.ID, ctx.Param("threadId"))
	if err != nil {
		return errors.Wrap(err, "marking thread read")
	}
	return ctx.JSON(http.StatusOK, markReadResponse{Updated: n})
}

// open marks a notification read and redirects to its page on the frontend.
func (api *notificationApi) open(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	dest, err := api.svc.Open(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "opening notification")
	}
	return ctx.Redirect(http.StatusSeeOther, api.frontendBaseURL+dest)
}
