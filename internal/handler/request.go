package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/query"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// bind reads the JSON object body and turns it into a command with build.
func bind[T any](c echo.Context, build func(map[string]any) (T, error)) (T, error) {
	var zero T
	raw, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return zero, apierr.BodyValidationErrors(apierr.ValidationErrors{apierr.InvalidJSONBody()})
		}
		return zero, goerr.Wrap(err, "read request body")
	}
	body, err := command.ParseBody(raw)
	if err != nil {
		return zero, err
	}
	return build(body)
}

// idParam parses a UUID path parameter. Failures name the resource the route addresses.
func idParam(c echo.Context, name string, resource apierr.Resource) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.InvalidIDParam(resource)
	}
	return id, nil
}

func listQuery(c echo.Context, columns map[string]string) (query.List, error) {
	return query.ParseList(c.QueryParams(), columns)
}
