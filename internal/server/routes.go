package server

import (
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// Validation messages.
const (
	MsgInvalidID           = "Invalid ID"
	MsgNameEmpty           = "Product name cannot be empty"
	MsgPriceNotNumeric     = "Invalid value"
	MsgPriceEmpty          = "Product price cannot be empty"
	MsgPriceInvalid        = "Invalid price"
	MsgAvailabilityInvalid = "Invalid availability value"
)

func idRule() fiber.Handler {
	return validation.Param("id").IsInt().WithMessage(MsgInvalidID).Run
}

func nameRule() fiber.Handler {
	return validation.Body("name").NotEmpty().WithMessage(MsgNameEmpty).Run
}

func priceRule() fiber.Handler {
	return validation.Body("price").
		IsNumeric().WithMessage(MsgPriceNotNumeric).
		NotEmpty().WithMessage(MsgPriceEmpty).
		Custom(isStorablePrice).WithMessage(MsgPriceInvalid).
		Run
}

func availabilityRule() fiber.Handler {
	return validation.Body("availability").IsBoolean().WithMessage(MsgAvailabilityInvalid).Run
}

// isStorablePrice accepts positive prices of at least one cent that fit the
// price column.
func isStorablePrice(value interface{}) bool {
	price, err := cast.ToFloat64E(value)
	return err == nil && price >= models.MinPrice && price < models.MaxPrice
}

// registerProductRoutes binds each product route to its rules, the input
// error gate and its handler.
func registerProductRoutes(router fiber.Router, h *handlers.ProductHandler) {
	router.Get("/", h.HandleGetProducts)

	router.Get("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleGetProductByID,
	)

	router.Post("/",
		nameRule(),
		priceRule(),
		middleware.HandleInputErrors,
		h.HandleCreateProduct,
	)

	router.Put("/:id",
		nameRule(),
		priceRule(),
		idRule(),
		availabilityRule(),
		middleware.HandleInputErrors,
		h.HandleUpdateProduct,
	)

	router.Patch("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleToggleAvailability,
	)

	router.Delete("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleDeleteProduct,
	)
}
