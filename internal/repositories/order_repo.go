package repositories

import (
	"context"
	"time"

	"ecoms/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are always read and written together with their items.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	// GetByIDForUpdate reads the order and holds its row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error)
	GetByCustomerEmail(ctx context.Context, email string) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	// UpdateStatus moves the order from one status to another.
	// It returns ErrStatusConflict if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus, at time.Time) error
	Delete(ctx context.Context, id uint) error
}
