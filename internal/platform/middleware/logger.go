package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hass/hass/internal/platform/auth"
)

// Logger emits one structured line per request carrying the identifiers the
// rest of the tree keys on: request id, hospital, and the authenticated
// staff member.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			rid, _ := c.Get("request_id").(string)
			hospital, _ := c.Get("hospital_id").(string)

			var evt *zerolog.Event
			switch {
			case err != nil:
				evt = logger.Error().Err(err)
			case c.Response().Status >= 500:
				evt = logger.Error()
			default:
				evt = logger.Info()
			}

			evt.
				Str("request_id", rid).
				Str("hospital_id", hospital).
				Str("actor_id", auth.UserIDFromContext(req.Context())).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
