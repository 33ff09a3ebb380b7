package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoms/internal/metrics"
	"ecoms/internal/models"
	"ecoms/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// OrderService handles business logic related to orders.
// Every mutating operation runs as one transaction of the underlying store.
type OrderService struct {
	store     repositories.Store
	publisher MessagePublisher
	metrics   *metrics.OrderMetrics
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, publisher MessagePublisher, m *metrics.OrderMetrics) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// GetAllOrders retrieves all orders. An empty result is not an error.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.Orders().GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, orderLookupError(id, err)
	}
	return order, nil
}

// GetOrdersByCustomerEmail retrieves the orders placed with email.
// Unlike catalog listings, finding nothing is reported as ErrOrderNotFound.
func (s *OrderService) GetOrdersByCustomerEmail(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := s.store.Orders().GetByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w for email: %s", ErrOrderNotFound, email)
	}
	return orders, nil
}

// CreateOrder validates the request, takes the ordered quantities out of stock
// and stores the assembled order, all in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := checkLines(input.Items); err != nil {
			return err
		}

		ledger := inventoryLedger{products: tx.Products()}
		lines := make([]checkedLine, 0, len(input.Items))
		for _, requested := range input.Items {
			line, err := checkLine(ctx, tx.Products(), requested)
			if err != nil {
				return err
			}
			if err := ledger.decrement(ctx, line.product, line.quantity); err != nil {
				return err
			}
			lines = append(lines, line)
		}

		assembled, err := assembleOrder(input, lines, s.now())
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, assembled); err != nil {
			return fmt.Errorf("failed to create order in repository: %w", err)
		}
		order = assembled
		return nil
	})
	if err != nil {
		s.metrics.RecordOrderRejected(rejectionReason(err))
		log.WithError(err).WithFields(log.Fields{
			"customer_email": input.CustomerEmail,
			"items":          len(input.Items),
		}).Info("order rejected")
		return nil, err
	}

	units := 0
	for _, item := range order.Items {
		units += item.Quantity
	}
	total, _ := order.TotalAmount.Float64()
	s.metrics.RecordOrderCreated(units, total)
	log.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.TotalAmount.StringFixed(2),
		"items":    len(order.Items),
	}).Info("order created")
	publish(s.publisher, newOrderEvent(EventOrderCreated, order, "", order.CreatedAt))

	return order, nil
}

// UpdateOrderStatus moves a PENDING order to status. Moving to CANCELLED first
// returns every item's quantity to stock.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	status, err := models.ParseOrderStatus(string(status))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrderOperation, err)
	}

	var (
		order    *models.Order
		previous models.OrderStatus
		restored int
	)
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Orders().GetByIDForUpdate(ctx, id)
		if err != nil {
			return orderLookupError(id, err)
		}
		if !current.Status.AcceptsStatusChange() {
			return fmt.Errorf("%w: only orders with PENDING status can be updated. current status: %s",
				ErrInvalidOrderOperation, current.Status)
		}

		if status == models.OrderStatusCancelled {
			restored, err = inventoryLedger{products: tx.Products()}.restore(ctx, current.Items)
			if err != nil {
				return err
			}
		}

		now := s.now()
		if err := tx.Orders().UpdateStatus(ctx, id, current.Status, status, now); err != nil {
			return statusWriteError(id, err)
		}
		previous = current.Status
		current.Status = status
		current.UpdatedAt = now
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == models.OrderStatusCancelled {
		s.metrics.RecordOrderCancelled(restored)
	}
	log.WithFields(log.Fields{
		"order_id": id,
		"from":     previous,
		"to":       status,
	}).Info("order status updated")
	publish(s.publisher, newOrderEvent(EventOrderStatusChanged, order, previous, order.UpdatedAt))

	return order, nil
}

// DeleteOrder removes a PENDING or CANCELLED order with its items. A PENDING
// order's stock is restored first; a CANCELLED one already gave it back.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	var (
		order    *models.Order
		restored int
	)
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Orders().GetByIDForUpdate(ctx, id)
		if err != nil {
			return orderLookupError(id, err)
		}
		if !current.Status.Deletable() {
			return fmt.Errorf("%w: only PENDING or CANCELLED orders can be deleted. current status: %s",
				ErrInvalidOrderOperation, current.Status)
		}

		if current.Status.HoldsStock() {
			restored, err = inventoryLedger{products: tx.Products()}.restore(ctx, current.Items)
			if err != nil {
				return err
			}
		}

		if err := tx.Orders().Delete(ctx, id); err != nil {
			return orderLookupError(id, err)
		}
		order = current
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordOrderDeleted(restored)
	log.WithFields(log.Fields{
		"order_id":       id,
		"status":         order.Status,
		"restored_units": restored,
	}).Info("order deleted")
	publish(s.publisher, newOrderEvent(EventOrderDeleted, order, "", s.now()))

	return nil
}

func orderLookupError(id uint, err error) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%w with id: %d", ErrOrderNotFound, id)
	}
	return fmt.Errorf("load order %d: %w", id, err)
}

func statusWriteError(id uint, err error) error {
	if errors.Is(err, repositories.ErrStatusConflict) {
		return fmt.Errorf("%w: order %d was modified concurrently", ErrInvalidOrderOperation, id)
	}
	return fmt.Errorf("failed to update order status for order %d: %w", id, err)
}
