package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/hours"
)

type hoursApi struct {
	svc      *hours.Service
	validate *validator.Validate
}

func registerHoursAPI(g *echo.Group, svc *hours.Service, validate *validator.Validate) {
	api := hoursApi{svc: svc, validate: validate}

	hg := g.Group("/hours")
	hg.GET("", api.query)
	hg.GET("/programs", api.programs)
	hg.GET("/progress", api.progress)
	hg.POST("/log", api.logSelfReported, studentMiddleware())
	hg.POST("/manual", api.logManual, staffMiddleware())
	hg.POST("/:id/review", api.review, staffMiddleware())
}

type progressResponse struct {
	hours.ProgramProgress
	RemainingMinutes int `json:"remaining_minutes"`
}

func (api *hoursApi) programs(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, hours.Programs)
}

// query lists the entries of the current student, or any entries for staff.
func (api *hoursApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	filter := new(hours.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []hours.Entry{})
	}
	filter.Clean()
	if !usr.IsStaff() {
		filter.StudentID = usr.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	entries, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying hour entries")
	}
	if entries == nil {
		entries = []hours.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *hoursApi) progress(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	studentID := usr.ID
	if usr.IsStaff() {
		studentID = core.CleanString(ctx.QueryParam("student_id"))
		if studentID == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
		}
	}

	progress, err := api.svc.Progress(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	res := make([]progressResponse, 0, len(progress))
	for _, pp := range progress {
		res = append(res, progressResponse{ProgramProgress: pp, RemainingMinutes: pp.RemainingMinutes()})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *hoursApi) logSelfReported(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data hours.NewSelfReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSelfReport")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.LogSelfReported(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "logging hours")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *hoursApi) logManual(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data hours.NewManualEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewManualEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.LogManual(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "logging manual hours")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *hoursApi) review(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data hours.ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Review(ctx.Request().Context(), usr, ctx.Param("id"), data.Decision)
	if err != nil {
		return errors.Wrap(err, "reviewing hour entry")
	}
	return ctx.JSON(http.StatusOK, e)
}
