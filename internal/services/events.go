package services

import (
	"encoding/json"
	"time"

	"ecoms/internal/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Routing keys of the order events published after a transaction commits.
const (
	OrderEventsExchange     = "orders"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// MessagePublisher delivers a message body to an exchange under a routing key.
type MessagePublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the body of every published order event.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        uint               `json:"orderId"`
	CustomerEmail  string             `json:"customerEmail"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	Items          []OrderEventItem   `json:"items"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// OrderEventItem is one order line as carried in an event.
type OrderEventItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

func newOrderEvent(eventType string, order *models.Order, previous models.OrderStatus, at time.Time) OrderEvent {
	items := make([]OrderEventItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderEventItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		CustomerEmail:  order.CustomerEmail,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		Items:          items,
		OccurredAt:     at,
	}
}

// publish sends the event if a publisher is configured. The order is already
// committed, so a failed publish is logged and never returned to the caller.
func publish(publisher MessagePublisher, event OrderEvent) {
	fields := log.Fields{"event": event.Type, "order_id": event.OrderID}
	if publisher == nil {
		log.WithFields(fields).Debug("message publisher not configured, skipping order event")
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithFields(fields).Error("failed to marshal order event")
		return
	}
	if err := publisher.Publish(OrderEventsExchange, event.Type, body); err != nil {
		log.WithError(err).WithFields(fields).Warn("failed to publish order event")
		return
	}
	log.WithFields(fields).Debug("order event published")
}
