package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campaign-companion/internal/repository"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{repository.ErrBadRequest, http.StatusBadRequest},
	{repository.ErrUnauthorized, http.StatusUnauthorized},
	{repository.ErrForbidden, http.StatusForbidden},
	{repository.ErrNotFound, http.StatusNotFound},
	{repository.ErrConflict, http.StatusConflict},
}

// writeError maps a service error onto a status code and a short message.
// Anything unclassified is logged and reported as a bare internal error.
func writeError(c echo.Context, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return c.JSON(s.status, echo.Map{"error": publicMessage(err, s.err)})
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Msg("unhandled error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// publicMessage returns the reason a service attached to a sentinel, or the
// sentinel text itself when the error carries anything else.
func publicMessage(err, sentinel error) string {
	if reason, ok := strings.CutPrefix(err.Error(), sentinel.Error()+": "); ok && reason != "" && !strings.Contains(reason, "\n") {
		return reason
	}
	return sentinel.Error()
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// HTTPErrorHandler renders errors that escape handlers, such as unknown
// routes or panics recovered by middleware, in the same JSON shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
			msg = s
		}
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, echo.Map{"error": strings.ToLower(msg)})
		return
	}
	_ = writeError(c, err)
}
