package echoapi

import (
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/campus"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// flexFloat accepts a JSON number or a numeric string. Anything else is kept as NaN so the
// caller can tell "not supplied" from "not a number".
type flexFloat struct {
	set bool
	val float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	f.set = true
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(s, `"`)), 64)
	if err != nil {
		v = math.NaN()
	}
	f.val = v
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.val
	return &v
}

// flexBool accepts a JSON boolean or a boolean string ("true", "false", "1", "0").
type flexBool struct {
	set bool
	val bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	v, err := strconv.ParseBool(strings.Trim(s, `"`))
	if err != nil {
		return errors.Errorf("is_enabled: %s is not a boolean", s)
	}
	b.set, b.val = true, v
	return nil
}

func (b flexBool) ptr() *bool {
	if !b.set {
		return nil
	}
	v := b.val
	return &v
}

type locationRequest struct {
	Lat          flexFloat `json:"lat"`
	Lng          flexFloat `json:"lng"`
	RadiusMeters flexFloat `json:"radius_meters"`
	Label        *string   `json:"label"`
	IsEnabled    flexBool  `json:"is_enabled"`
}

func (lr locationRequest) update() campus.LocationUpdate {
	return campus.LocationUpdate{
		Lat:          lr.Lat.ptr(),
		Lng:          lr.Lng.ptr(),
		RadiusMeters: lr.RadiusMeters.ptr(),
		Label:        lr.Label,
		IsEnabled:    lr.IsEnabled.ptr(),
	}
}
