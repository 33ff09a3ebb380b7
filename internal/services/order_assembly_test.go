package services

import (
	"context"
	"testing"
	"time"

	"ecoms/internal/models"
	"ecoms/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []OrderLine
		wantErr error
		wantMsg string
	}{
		{"valid", []OrderLine{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 9}}, nil, ""},
		{"empty", nil, ErrInvalidOrderOperation, "at least one item"},
		{"repeat", []OrderLine{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}, {ProductID: 1, Quantity: 3}}, ErrDuplicateProductInOrder, "product id 1"},
		{"zero quantity", []OrderLine{{ProductID: 4, Quantity: 0}}, ErrInvalidOrderOperation, "product id 4"},
		{"repeat after zero quantity", []OrderLine{{ProductID: 7, Quantity: 0}, {ProductID: 7, Quantity: 1}}, ErrDuplicateProductInOrder, "product id 7"},
		{"repeat later than a zero quantity", []OrderLine{{ProductID: 1, Quantity: 0}, {ProductID: 2, Quantity: 1}, {ProductID: 2, Quantity: 1}}, ErrDuplicateProductInOrder, "product id 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLines(tt.lines)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAssembleOrder(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	input := CreateOrderInput{
		CustomerEmail:   "jane@example.com",
		CustomerName:    "Jane Doe",
		CustomerPhone:   "+998901234567",
		DeliveryAddress: "12 Market Street",
	}
	lines := []checkedLine{
		{product: &models.Product{ID: 5, Name: "P", Price: decimal.RequireFromString("10.00")}, quantity: 3},
		{product: &models.Product{ID: 2, Name: "Q", Price: decimal.RequireFromString("0.10")}, quantity: 3},
	}

	order, err := assembleOrder(input, lines, now)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, now, order.UpdatedAt)
	assert.Equal(t, "Jane Doe", order.CustomerName)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, order.Items[0].LineNumber)
	assert.Equal(t, uint(5), order.Items[0].ProductID)
	assert.Equal(t, "P", order.Items[0].ProductName)
	assert.Equal(t, 2, order.Items[1].LineNumber)
	assert.True(t, decimal.RequireFromString("30").Equal(order.Items[0].Subtotal))
	assert.True(t, decimal.RequireFromString("0.3").Equal(order.Items[1].Subtotal))
	assert.Equal(t, "30.30", order.TotalAmount.StringFixed(2))
}

func TestAssembleOrder_RejectsZeroTotal(t *testing.T) {
	lines := []checkedLine{{product: &models.Product{ID: 1, Name: "Sample", Price: decimal.Zero}, quantity: 2}}

	order, err := assembleOrder(CreateOrderInput{}, lines, time.Now())
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrInvalidOrderOperation)
	assert.Contains(t, err.Error(), "order total amount must be greater than zero")
}

func TestInventoryLedger(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMockProductRepository()
	product := &models.Product{Name: "Lamp", Price: decimal.RequireFromString("15.00"), Stock: 4, IsActive: true}
	require.NoError(t, products.Create(ctx, product))
	ledger := inventoryLedger{products: products}

	require.NoError(t, ledger.decrement(ctx, product, 3))
	assert.Equal(t, 1, product.Stock)

	err := ledger.decrement(ctx, product, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	units, err := ledger.restore(ctx, []models.OrderItem{{ProductID: product.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, units)
	stored, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Stock)

	_, err = ledger.restore(ctx, []models.OrderItem{{ProductID: 404, Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Contains(t, err.Error(), "cannot restore stock")
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "duplicate_product", rejectionReason(ErrDuplicateProductInOrder))
	assert.Equal(t, "product_not_found", rejectionReason(ErrProductNotFound))
	assert.Equal(t, "insufficient_stock", rejectionReason(ErrInsufficientStock))
	assert.Equal(t, "invalid_operation", rejectionReason(ErrInvalidOrderOperation))
	assert.Equal(t, "internal", rejectionReason(assert.AnError))
}
