package handlers

import (
	"ecoms/internal/services"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	CustomerEmail   string             `json:"customerEmail" validate:"required,email"`
	CustomerName    string             `json:"customerName" validate:"required,min=2,max=100"`
	CustomerPhone   string             `json:"customerPhone" validate:"required,min=9,max=20"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required,min=10,max=500"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest is one requested line of an order.
type OrderItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	lines := make([]services.OrderLine, len(r.Items))
	for i, item := range r.Items {
		lines[i] = services.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return services.CreateOrderInput{
		CustomerEmail:   r.CustomerEmail,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		DeliveryAddress: r.DeliveryAddress,
		Items:           lines,
	}
}

// UpdateOrderStatusRequest is the body of PUT /orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name     string           `json:"name" validate:"required,min=2,max=255"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Stock    *int             `json:"stock" validate:"required,min=0"`
	Category string           `json:"category" validate:"required,min=2,max=100"`
}

func (r CreateProductRequest) toInput() services.CreateProductInput {
	return services.CreateProductInput{
		Name:     r.Name,
		Price:    *r.Price,
		Stock:    *r.Stock,
		Category: r.Category,
	}
}

// UpdateProductRequest is the body of PUT /products/:id. Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=2,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock" validate:"omitempty,min=0"`
	Category *string          `json:"category" validate:"omitempty,min=2,max=100"`
	IsActive *bool            `json:"isActive"`
}

func (r UpdateProductRequest) toInput() services.UpdateProductInput {
	return services.UpdateProductInput{
		Name:     r.Name,
		Price:    r.Price,
		Stock:    r.Stock,
		Category: r.Category,
		IsActive: r.IsActive,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
