package services

import (
	"context"
	"errors"
	"fmt"

	"ecoms/internal/models"
	"ecoms/internal/repositories"
)

// inventoryLedger applies stock movements through the product repository of one transaction.
type inventoryLedger struct {
	products repositories.ProductRepository
}

// decrement takes qty units of product out of stock. The repository applies the
// availability check and the write as one statement; losing a race to a
// concurrent order surfaces as ErrInsufficientStock.
func (l inventoryLedger) decrement(ctx context.Context, product *models.Product, qty int) error {
	if err := l.products.DecrementStock(ctx, product.ID, qty); err != nil {
		if errors.Is(err, repositories.ErrStockConflict) {
			return fmt.Errorf("%w: stock of product %s dropped below the requested %d while ordering",
				ErrInsufficientStock, product.Name, qty)
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	product.Stock -= qty
	return nil
}

// restore returns every item's ordered quantity to its product and reports the units moved.
// No upper bound is applied.
func (l inventoryLedger) restore(ctx context.Context, items []models.OrderItem) (int, error) {
	units := 0
	for _, item := range items {
		if err := l.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return 0, fmt.Errorf("%w with id: %d, cannot restore stock", ErrProductNotFound, item.ProductID)
			}
			return 0, fmt.Errorf("restore stock: %w", err)
		}
		units += item.Quantity
	}
	return units, nil
}
