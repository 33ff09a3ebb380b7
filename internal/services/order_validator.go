package services

import (
	"context"
	"errors"
	"fmt"

	"ecoms/internal/models"
	"ecoms/internal/repositories"
)

// OrderLine is one requested (product, quantity) pairing.
type OrderLine struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput carries the customer fields and the requested lines of a new order.
type CreateOrderInput struct {
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	Items           []OrderLine
}

// checkedLine is a requested line whose product passed every availability check.
type checkedLine struct {
	product  *models.Product
	quantity int
}

// checkLines rejects empty orders, then repeated products anywhere in the
// list, then non-positive quantities. It runs before any product row is read.
func checkLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrderOperation)
	}
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("%w: product id %d", ErrDuplicateProductInOrder, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return fmt.Errorf("%w: quantity for product id %d must be at least 1", ErrInvalidOrderOperation, line.ProductID)
		}
	}
	return nil
}

// checkLine loads the line's product and verifies it can be sold in the requested quantity.
func checkLine(ctx context.Context, products repositories.ProductRepository, line OrderLine) (checkedLine, error) {
	product, err := products.GetByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return checkedLine{}, fmt.Errorf("%w with id: %d", ErrProductNotFound, line.ProductID)
		}
		return checkedLine{}, fmt.Errorf("load product %d: %w", line.ProductID, err)
	}
	if !product.IsActive {
		return checkedLine{}, fmt.Errorf("%w: product is not available: %s", ErrInvalidOrderOperation, product.Name)
	}
	if product.Stock <= 0 {
		return checkedLine{}, fmt.Errorf("%w: product is out of stock: %s", ErrInsufficientStock, product.Name)
	}
	if product.Stock < line.Quantity {
		return checkedLine{}, fmt.Errorf("%w: insufficient stock for product: %s. available: %d, requested: %d",
			ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
	}
	return checkedLine{product: product, quantity: line.Quantity}, nil
}
