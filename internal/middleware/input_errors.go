package middleware

import (
	"catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// HandleInputErrors stops the request with 400 and the recorded violations
// when any validation chain failed. Otherwise control passes to the next
// handler unchanged.
func HandleInputErrors(c *fiber.Ctx) error {
	if violations := validation.Result(c); len(violations) > 0 {
		return InputErrors(c, violations)
	}
	return c.Next()
}

// InputErrors writes the 400 {"errors": [...]} response.
func InputErrors(c *fiber.Ctx, violations []validation.Violation) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": violations,
	})
}
