package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/pressdesk/internal/logger"
)

// LoggerConfig defines the config for the request logger
type LoggerConfig struct {
	// Next skips the middleware when it returns true
	Next func(c *fiber.Ctx) bool

	// Logger defaults to the global logger
	Logger *zerolog.Logger
}

// NewLogger logs one event per request with method, path, status, ip and
// latency. Server errors log at error level, client errors at warn.
func NewLogger(config ...LoggerConfig) fiber.Handler {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}
		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if err != nil {
			event = event.Err(err)
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("ip", c.IP()).
			Dur("latency", latency).
			Msg("request")

		return err
	}
}

// RequestLogger skips static assets
func RequestLogger() fiber.Handler {
	return NewLogger(LoggerConfig{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/favicon.ico"
		},
	})
}
