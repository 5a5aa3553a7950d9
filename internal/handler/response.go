package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
)

// HTTPErrorHandler renders every failure as {code, details}. Anything outside the
// apierr taxonomy is logged and rendered as INTERNAL_SERVER_ERROR.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := mapError(err)
	if apiErr.Kind() == apierr.KindInternalServerError {
		logInternal(c, err)
	}

	if jsonErr := c.JSON(apiErr.Status(), apiErr.Response()); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}

func mapError(err error) *apierr.Error {
	if apiErr, ok := apierr.As(err); ok {
		return apiErr
	}

	// echo's own routing errors
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return apierr.RouteNotFound()
		case http.StatusRequestEntityTooLarge:
			return apierr.BodyValidationErrors(apierr.ValidationErrors{apierr.InvalidJSONBody()})
		}
	}
	return apierr.Internal(err)
}

func logInternal(c echo.Context, err error) {
	attrs := []any{
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", err,
	}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values(), "stack", ge.Stacks())
	}
	slog.ErrorContext(c.Request().Context(), "unhandled error", attrs...)
}
