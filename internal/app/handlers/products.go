package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/service"
)

// ProductRequest тело для создания и полной замены товара.
// Цена и остаток дополнительно проверяются в сервисе каталога.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Available   *bool           `json:"available"`
	Tags        []string        `json:"tags" validate:"dive,required,max=50"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type StockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

func (req ProductRequest) toModel(id int64) *models.Product {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return &models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Available:   available,
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
	}
}

// ListProductsHandler GET /api/products?q=&tag=&available=&skip=&limit=
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		offset, limit, err := paging(r)
		if err != nil {
			writeError(w, logger, "invalid paging", err)
			return
		}
		q := r.URL.Query()
		availableOnly := false
		if raw := q.Get("available"); raw != "" {
			if availableOnly, err = strconv.ParseBool(raw); err != nil {
				writeError(w, logger, "invalid available flag", fmt.Errorf("%w: bad available", errInvalidRequest))
				return
			}
		}

		products, err := catalog.List(r.Context(), models.ProductFilter{
			ListFilter:    models.ListFilter{Query: strings.TrimSpace(q.Get("q")), Offset: offset, Limit: limit},
			Tag:           strings.TrimSpace(q.Get("tag")),
			AvailableOnly: availableOnly,
		})
		if err != nil {
			writeError(w, logger, "failed to list products", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toProductList(products))
	}
}

func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, logger, "invalid product id", err)
			return
		}
		product, err := catalog.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, "failed to get product", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toProductResponse(product))
	}
}

func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req ProductRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}
		product, err := catalog.Create(r.Context(), req.toModel(0))
		if err != nil {
			writeError(w, logger, "failed to create product", err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, toProductResponse(product))
	}
}

// UpdateProductHandler PUT /api/products/{id}: полная замена товара
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, logger, "invalid product id", err)
			return
		}
		var req ProductRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}
		product, err := catalog.Update(r.Context(), req.toModel(id))
		if err != nil {
			writeError(w, logger, "failed to update product", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toProductResponse(product))
	}
}

func SetAvailabilityHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetAvailabilityHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, logger, "invalid product id", err)
			return
		}
		var req AvailabilityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}
		product, err := catalog.SetAvailability(r.Context(), id, *req.Available)
		if err != nil {
			writeError(w, logger, "failed to update availability", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toProductResponse(product))
	}
}

func SetStockHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetStockHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, logger, "invalid product id", err)
			return
		}
		var req StockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, "invalid request", err)
			return
		}
		product, err := catalog.SetStock(r.Context(), id, *req.Stock)
		if err != nil {
			writeError(w, logger, "failed to update stock", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toProductResponse(product))
	}
}

func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, logger, "invalid product id", err)
			return
		}
		if err := catalog.Delete(r.Context(), id); err != nil {
			writeError(w, logger, "failed to delete product", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
