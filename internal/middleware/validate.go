package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/pressdesk/internal/logger"
)

var validate = validator.New()

const queryKey = "query"

// ValidateQuery parses the query string into a fresh T per request,
// validates it and stores it for QueryFrom
func ValidateQuery[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := new(T)
		if err := c.QueryParser(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
		}
		if err := validate.Struct(q); err != nil {
			var fields validator.ValidationErrors
			if errors.As(err, &fields) && len(fields) > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameter: "+fields[0].Field())
			}
			return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
		}
		c.Locals(queryKey, q)
		return c.Next()
	}
}

// QueryFrom returns the query parsed by ValidateQuery
func QueryFrom[T any](c *fiber.Ctx) *T {
	if q, ok := c.Locals(queryKey).(*T); ok {
		return q
	}
	return new(T)
}

// ErrorHandler renders errors that escaped the handlers: JSON for the API,
// the error page otherwise
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := http.StatusText(code)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	if IsAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
	c.Status(code)
	if renderErr := c.Render("error", fiber.Map{"Title": http.StatusText(code), "Status": code, "Message": message}, "layouts/main"); renderErr != nil {
		return c.Status(code).SendString(message)
	}
	return nil
}
