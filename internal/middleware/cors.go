package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// ErrCORSOriginNotAllowed is returned for cross-origin requests from any
// origin other than the configured one.
var ErrCORSOriginNotAllowed = fiber.NewError(fiber.StatusForbidden, "Not allowed by CORS")

// SingleOriginCORS allows cross-origin requests from allowedOrigin only.
// Requests carrying a different Origin header are rejected before they reach
// any route. Requests without an Origin header are not cross-origin and pass.
func SingleOriginCORS(allowedOrigin string) fiber.Handler {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")
	headers := cors.New(cors.Config{
		AllowOrigins: allowedOrigin,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodPatch,
			fiber.MethodDelete,
			fiber.MethodOptions,
		}, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
	})

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin != "" && !strings.EqualFold(strings.TrimRight(origin, "/"), allowedOrigin) {
			return ErrCORSOriginNotAllowed
		}
		return headers(c)
	}
}
