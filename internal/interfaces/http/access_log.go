package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LocalLogger logger con el request id para los handlers.
const LocalLogger = "logger"

// AccessLog registra cada request. Debe ir después de requestid.New().
// Se registra el patrón de la ruta y no la URL: /auth/:token llevaría el token del proveedor.
func AccessLog(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid, _ := c.Locals("requestid").(string)
		l := base.With().Str("request_id", rid).Logger()
		c.Locals(LocalLogger, l)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev = ev.Str("method", c.Method()).
			Str("route", c.Route().Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if sid := GetSessionID(c); sid != "" {
			ev = ev.Str("session_id", sid)
		}
		ev.Msg("http")
		return err
	}
}

func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(LocalLogger).(zerolog.Logger); ok {
		return &l
	}
	l := zerolog.Nop()
	return &l
}
