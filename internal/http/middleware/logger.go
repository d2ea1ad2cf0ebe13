package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"despesas/internal/logger"
)

// Logger is a middleware that logs each HTTP request as one JSON line.
// Fields: request_id (set by RequestID), method, path, status, latency in milliseconds.
func Logger(log zerolog.Logger) fiber.Handler {
	log = log.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid := RequestIDFrom(c)
		reqLog := log.With().Str("request_id", rid).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		reqLog.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("request")

		return err
	}
}

// LoggerWithWriter is Logger writing to w at info level.
func LoggerWithWriter(w io.Writer) fiber.Handler {
	return Logger(logger.NewWithWriter(w, "info"))
}
