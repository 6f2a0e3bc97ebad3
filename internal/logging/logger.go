// Package logging configures the process-wide zerolog logger and the HTTP
// access log.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up the global logger: human-readable output in dev, JSON lines
// everywhere else.
func Init(env string) {
	InitWriter(env, os.Stdout)
}

// InitWriter is Init with an explicit destination.
func InitWriter(env string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "dev" {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(cw).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// UserIDFunc extracts the authenticated user id of a request, if any.
type UserIDFunc func(c echo.Context) string

// AccessLog logs one line per request with its route, status and latency.
// Server errors are logged at error level.
func AccessLog(userID UserIDFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler pick the status before it is logged
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			ev := log.Info()
			if res.Status >= 500 {
				ev = log.Error().Err(err)
			}
			ev = ev.Str("method", req.Method).
				Str("route", c.Path()).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID))
			if userID != nil {
				if id := userID(c); id != "" {
					ev = ev.Str("user_id", id)
				}
			}
			ev.Msg("request")
			return nil
		}
	}
}
