package middleware

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dkaraca/briefly/internal/logger"
)

var validate = validator.New()

// ParseAndValidate parses the request body into out and validates it
// against its struct tags. On failure it writes the error response and
// returns false; handlers should return nil in that case.
func ParseAndValidate(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"msg":   err.Error(),
		})
		return false
	}

	if err := validate.Struct(out); err != nil {
		fields := make(map[string]string)
		for _, ve := range err.(validator.ValidationErrors) {
			fields[ve.Field()] = ve.Tag()
		}
		c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}

// ErrorHandler renders uncaught handler errors as consistent JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
