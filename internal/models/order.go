package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus converts a case-insensitive status name into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := orderStatuses[status]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

// AcceptsStatusChange reports whether an order in this status may move to another status.
// Only PENDING orders are mutable.
func (s OrderStatus) AcceptsStatusChange() bool {
	return s == OrderStatusPending
}

// Deletable reports whether an order in this status may be removed.
func (s OrderStatus) Deletable() bool {
	return s == OrderStatusPending || s == OrderStatusCancelled
}

// HoldsStock reports whether the order's quantities are still taken out of product stock.
// A cancelled order has already given its stock back.
func (s OrderStatus) HoldsStock() bool {
	return s != OrderStatusCancelled
}

// OrderItem is one line of an order. It is immutable once created.
type OrderItem struct {
	OrderID     uint            `json:"-" gorm:"primaryKey;autoIncrement:false"`
	LineNumber  int             `json:"lineNumber" gorm:"primaryKey;autoIncrement:false"`
	ProductID   uint            `json:"productId" gorm:"not null;index"`
	ProductName string          `json:"productName" gorm:"type:varchar(255)"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"` // Price at the time of order
	Subtotal    decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
}

// TableName pins the table name used by GORM.
func (OrderItem) TableName() string { return "order_items" }

// Order is the aggregate root: the header row plus the line items it owns.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerEmail   string          `json:"customerEmail" gorm:"type:varchar(255);not null;index"`
	CustomerName    string          `json:"customerName" gorm:"type:varchar(100);not null"`
	CustomerPhone   string          `json:"customerPhone" gorm:"type:varchar(20);not null"`
	DeliveryAddress string          `json:"customerAddress" gorm:"type:varchar(500);not null"`
	Status          OrderStatus     `json:"orderStatus" gorm:"type:varchar(20);not null;index"`
	TotalAmount     decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	Items           []OrderItem     `json:"orderItems" gorm:"-"`
	CreatedAt       time.Time       `json:"orderDate" gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// TableName pins the table name used by GORM.
func (Order) TableName() string { return "orders" }

// ItemsTotal sums the subtotals of every line item.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}
