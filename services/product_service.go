package services

import (
	"context"
	"errors"

	"commerce-service/models"
	"commerce-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductService is plain catalog CRUD; products only need to exist and carry
// a price.
type ProductService interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, *ServiceError)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError)
	ListProducts(ctx context.Context) ([]models.Product, *ServiceError)
}

type productServiceImpl struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(products repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productServiceImpl{products: products, logger: logger}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, *ServiceError) {
	if product.Name == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "product name is required"}
	}
	if product.Price.IsNegative() {
		return nil, &ServiceError{StatusCode: 400, Message: "product price cannot be negative"}
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to save product"}
	}
	return product, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to fetch product"}
	}
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]models.Product, *ServiceError) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list products"}
	}
	return products, nil
}
