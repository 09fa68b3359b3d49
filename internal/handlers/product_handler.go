package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// Response messages shared with the route rules and tests.
const (
	MsgNotFound = "Product not found"
	MsgDeleted  = "Product deleted"
)

// DataResponse wraps every successful response body.
// @Description Successful response
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is returned for missing products and server errors.
// @Description Error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is returned when request validation fails.
// @Description Validation error response
type ValidationErrorResponse struct {
	Errors []validation.Violation `json:"errors"`
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	log     zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// HandleGetProducts godoc
// @Summary List products
// @Description Returns every product ordered by ID
// @Tags Products
// @Produce json
// @Success 200 {object} DataResponse{data=[]models.Product}
// @Router /api/products [get]
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return h.internalError(err, "Could not retrieve products")
	}
	return c.JSON(DataResponse{Data: products})
}

// HandleGetProductByID godoc
// @Summary Get a product by ID
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} DataResponse{data=models.Product}
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.serviceError(c, err, "Could not retrieve product")
	}
	return c.JSON(DataResponse{Data: product})
}

// HandleCreateProduct godoc
// @Summary Create a product
// @Description Stores a new product. Availability starts as true.
// @Tags Products
// @Accept json
// @Produce json
// @Param product body ProductInput true "Name and price"
// @Success 201 {object} DataResponse{data=models.Product}
// @Failure 400 {object} ValidationErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	fields, _ := validation.BodyFields(c)
	product := &models.Product{
		Name:  cast.ToString(fields["name"]),
		Price: cast.ToFloat64(fields["price"]),
	}

	if err := h.service.CreateProduct(product); err != nil {
		return h.serviceError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(DataResponse{Data: product})
}

// HandleUpdateProduct godoc
// @Summary Update a product
// @Description Replaces name, price and availability of a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductUpdateInput true "Full product"
// @Success 200 {object} DataResponse{data=models.Product}
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	current, err := h.service.GetProductByID(id)
	if err != nil {
		return h.serviceError(c, err, "Could not retrieve product")
	}

	fields, _ := validation.BodyFields(c)
	current.Name = cast.ToString(fields["name"])
	current.Price = cast.ToFloat64(fields["price"])
	current.Availability = cast.ToBool(validation.Stringify(fields["availability"]))

	if err := h.service.UpdateProduct(current); err != nil {
		return h.serviceError(c, err, "Could not update product")
	}
	return c.JSON(DataResponse{Data: current})
}

// HandleToggleAvailability godoc
// @Summary Toggle product availability
// @Description Flips the availability of a product. Any request body is ignored.
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} DataResponse{data=models.Product}
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [patch]
func (h *ProductHandler) HandleToggleAvailability(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	product, err := h.service.ToggleAvailability(id)
	if err != nil {
		return h.serviceError(c, err, "Could not update product availability")
	}
	return c.JSON(DataResponse{Data: product})
}

// HandleDeleteProduct godoc
// @Summary Delete a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} DataResponse{data=string}
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [delete]
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.service.DeleteProduct(id); err != nil {
		return h.serviceError(c, err, "Could not delete product")
	}
	return c.JSON(DataResponse{Data: MsgDeleted})
}

// ProductInput is the create request body.
type ProductInput struct {
	Name  string  `json:"name" example:"Curved Monitor"`
	Price float64 `json:"price" example:"899"`
}

// ProductUpdateInput is the full update request body.
type ProductUpdateInput struct {
	Name         string  `json:"name" example:"Curved Monitor"`
	Price        float64 `json:"price" example:"899"`
	Availability bool    `json:"availability" example:"true"`
}

// productID reads the already validated id parameter. Integers that do not
// fit an int cannot match any row.
func productID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	return id, err == nil
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: MsgNotFound})
}

func (h *ProductHandler) serviceError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return notFound(c)
	case errors.Is(err, services.ErrInvalidProduct):
		return middleware.InputErrors(c, productViolations(err))
	default:
		return h.internalError(err, message)
	}
}

// productViolations turns model constraint failures into the violation
// shape the route rules use.
func productViolations(err error) []validation.Violation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []validation.Violation{{Type: "field", Msg: "Invalid product", Location: validation.LocationBody}}
	}

	violations := make([]validation.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, validation.Violation{
			Type:     "field",
			Value:    fe.Value(),
			Msg:      constraintMessage(fe),
			Path:     fe.Field(),
			Location: validation.LocationBody,
		})
	}
	return violations
}

func constraintMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func (h *ProductHandler) internalError(err error, message string) error {
	h.log.Error().Err(err).Msg(message)
	return fiber.NewError(fiber.StatusInternalServerError, message)
}
