package services

import (
	"fmt"
	"time"

	"ecoms/internal/models"

	"github.com/shopspring/decimal"
)

// assembleOrder builds a PENDING order from checked lines. Each item snapshots
// the product's current name and price; the total is the sum of the subtotals.
func assembleOrder(input CreateOrderInput, lines []checkedLine, now time.Time) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		subtotal := line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity)))
		items = append(items, models.OrderItem{
			LineNumber:  i + 1,
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Quantity:    line.quantity,
			UnitPrice:   line.product.Price,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: order total amount must be greater than zero", ErrInvalidOrderOperation)
	}

	return &models.Order{
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		DeliveryAddress: input.DeliveryAddress,
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
