package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Product lifecycle event types.
const (
	EventProductCreated             = "product.created"
	EventProductUpdated             = "product.updated"
	EventProductAvailabilityToggled = "product.availability_toggled"
	EventProductDeleted             = "product.deleted"
)

// ErrInvalidProduct is returned when a product would be persisted in a state
// that breaks the model constraints.
var ErrInvalidProduct = errors.New("invalid product")

// EventPublisher sends product lifecycle events.
type EventPublisher interface {
	PublishProductEvent(eventType string, productID int) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are sent.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
		log:       log,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id int) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct stores a new product. New products are always available.
func (s *ProductService) CreateProduct(product *models.Product) error {
	product.ID = 0
	product.Availability = true
	if err := s.check(product); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.publish(EventProductCreated, product.ID)
	return nil
}

// UpdateProduct replaces name, price and availability of an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.check(product); err != nil {
		return err
	}
	if err := s.repo.Update(product); err != nil {
		return err
	}
	s.publish(EventProductUpdated, product.ID)
	return nil
}

// ToggleAvailability flips the availability flag of a product and returns
// the stored result.
func (s *ProductService) ToggleAvailability(id int) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	product.Availability = !product.Availability
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.publish(EventProductAvailabilityToggled, product.ID)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publish(EventProductDeleted, id)
	return nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check rounds the price to the column scale and validates the result, so
// the stored row and the response carry the same price.
func (s *ProductService) check(product *models.Product) error {
	product.Price = math.Round(product.Price*100) / 100
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}
	return nil
}

func (s *ProductService) publish(eventType string, productID int) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(eventType, productID); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Int("product_id", productID).Msg("failed to publish product event")
	}
}
