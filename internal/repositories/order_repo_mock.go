package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ecoms/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[uint]models.Order
	nextID uint
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint]models.Order),
		nextID: 1,
	}
}

// cloneOrder copies the item slice so callers never share it with the map.
func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

// GetAll returns all orders ordered by ID.
func (r *MockOrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %d: %w", id, ErrRecordNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// GetByIDForUpdate is GetByID; the mock store serializes transactions instead of locking rows.
func (r *MockOrderRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	return r.GetByID(ctx, id)
}

// GetByCustomerEmail returns the orders placed with the given email.
func (r *MockOrderRepository) GetByCustomerEmail(_ context.Context, email string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.CustomerEmail == email }), nil
}

func (r *MockOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			orderList = append(orderList, cloneOrder(order))
		}
	}
	sort.Slice(orderList, func(i, j int) bool { return orderList[i].ID < orderList[j].ID })
	return orderList
}

// Create adds a new order and stamps its items with the assigned ID.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateStatus updates the status of an order if it is still in the from status.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id uint, from, to models.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return fmt.Errorf("order %d: %w", id, ErrStatusConflict)
	}
	order.Status = to
	order.UpdatedAt = at
	r.orders[id] = order
	return nil
}

// Delete removes an order together with its items.
func (r *MockOrderRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %d: %w", id, ErrRecordNotFound)
	}
	delete(r.orders, id)
	return nil
}

type orderSnapshot struct {
	orders map[uint]models.Order
	nextID uint
}

func (r *MockOrderRepository) snapshot() orderSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := orderSnapshot{orders: make(map[uint]models.Order, len(r.orders)), nextID: r.nextID}
	for id, o := range r.orders {
		snap.orders[id] = o
	}
	return snap
}

func (r *MockOrderRepository) restore(snap orderSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = snap.orders
	r.nextID = snap.nextID
}
