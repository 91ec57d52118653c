package service

import (
	"errors"
	"fmt"

	"github.com/linemk/doggys-shop/internal/storage"
)

// Ошибки ядра. Ошибки хранилища переиспользуются, чтобы errors.Is
// работал одинаково на всех слоях.
var (
	ErrAccountNotFound    = storage.ErrUserNotFound
	ErrProductNotFound    = storage.ErrProductNotFound
	ErrOrderNotFound      = storage.ErrOrderNotFound
	ErrReceiptNotFound    = storage.ErrReceiptNotFound
	ErrDuplicateEmail     = storage.ErrEmailTaken
	ErrProductReferenced  = storage.ErrProductReferenced
	ErrAccountReferenced  = storage.ErrUserReferenced
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotPaid       = errors.New("order is not paid")
	ErrInvalidCredential  = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
	ErrProductUnavailable = errors.New("product is not available")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidProduct     = errors.New("invalid product")
)

// InsufficientStockError указывает товар, которого не хватает.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
