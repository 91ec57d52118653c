package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

// CatalogService управление каталогом товаров.
type CatalogService interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	SetAvailability(ctx context.Context, id int64, available bool) (*models.Product, error)
	SetStock(ctx context.Context, id int64, stock int) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{log: log, productRepo: productRepo}
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (s *catalogService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("name", product.Name))

	if err := validateProduct(product); err != nil {
		logger.Warn("invalid product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.Get"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			s.log.Error("failed to get product", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	const op = "service.CatalogService.List"

	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// Update заменяет товар целиком. Строки уже созданных заказов хранят свой снимок цены и не меняются.
func (s *catalogService) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", product.ID))

	if err := validateProduct(product); err != nil {
		logger.Warn("invalid product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			logger.Error("failed to update product", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product updated")
	return s.Get(ctx, product.ID)
}

func (s *catalogService) SetAvailability(ctx context.Context, id int64, available bool) (*models.Product, error) {
	const op = "service.CatalogService.SetAvailability"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id), slog.Bool("available", available))

	if err := s.productRepo.SetAvailability(ctx, id, available); err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			logger.Error("failed to update availability", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("availability updated")
	return s.Get(ctx, id)
}

// SetStock задает остаток (пополнение склада администратором)
func (s *catalogService) SetStock(ctx context.Context, id int64, stock int) (*models.Product, error) {
	const op = "service.CatalogService.SetStock"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id), slog.Int("stock", stock))

	if stock < 0 {
		logger.Warn("negative stock")
		return nil, fmt.Errorf("%s: %w: stock must not be negative", op, ErrInvalidProduct)
	}
	if err := s.productRepo.SetStock(ctx, id, stock); err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			logger.Error("failed to update stock", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("stock updated")
	return s.Get(ctx, id)
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	const op = "service.CatalogService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrProductReferenced):
			logger.Warn("product is referenced by orders")
		case errors.Is(err, storage.ErrProductNotFound):
			logger.Warn("product not found")
		default:
			logger.Error("failed to delete product", slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product deleted")
	return nil
}
