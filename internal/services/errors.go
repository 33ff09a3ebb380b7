package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every lookup failure.
	ErrNotFound = errors.New("not found")
	// ErrOrderNotFound is returned when an order lookup yields nothing.
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
	// ErrProductNotFound is returned when a product lookup yields nothing.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrInsufficientStock is returned when a product is out of stock or has fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateProductInOrder is returned when one order request names a product twice.
	ErrDuplicateProductInOrder = errors.New("duplicate product in order")
	// ErrInvalidOrderOperation covers every other business-rule violation.
	ErrInvalidOrderOperation = errors.New("invalid order operation")
)

// rejectionReason names the rule an order request broke, for metrics labels.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateProductInOrder):
		return "duplicate_product"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidOrderOperation):
		return "invalid_operation"
	default:
		return "internal"
	}
}
