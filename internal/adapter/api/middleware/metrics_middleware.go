package middleware

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"ecotrack/pkg/errors"
	"ecotrack/pkg/metrics"
)

// Metrics records request count and latency labelled by route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.IncInFlight()
			defer metrics.DecInFlight()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, path, strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}

// statusOf predicts the status the error handler will write for err.
func statusOf(err error) int {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	var validationErr validator.ValidationErrors
	if stderrors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	var httpErr *echo.HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
