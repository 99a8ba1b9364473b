package params

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// QueryParams holds common list-endpoint query parameters.
type QueryParams struct {
	Page  int
	Limit int
}

func (q QueryParams) Offset() int {
	return (q.Page - 1) * q.Limit
}

// FromContext parses page/limit from the request, clamping to sane bounds.
func FromContext(c echo.Context) QueryParams {
	q := QueryParams{Page: DefaultPage, Limit: DefaultLimit}

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}
