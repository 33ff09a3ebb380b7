package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics holds the Prometheus collectors for order and stock activity.
type OrderMetrics struct {
	ordersCreated   prometheus.Counter
	ordersCancelled prometheus.Counter
	ordersDeleted   prometheus.Counter
	ordersRejected  *prometheus.CounterVec

	stockDecremented prometheus.Counter
	stockRestored    prometheus.Counter

	orderValue prometheus.Histogram
}

// NewOrderMetrics registers the order collectors with registerer.
// A nil registerer means prometheus.DefaultRegisterer.
func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoms_orders_created_total",
			Help: "Total number of orders created",
		})),
		ordersCancelled: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoms_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		})),
		ordersDeleted: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoms_orders_deleted_total",
			Help: "Total number of orders deleted",
		})),
		ordersRejected: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoms_orders_rejected_total",
			Help: "Total number of order requests rejected, by reason",
		}, []string{"reason"})),
		stockDecremented: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoms_stock_units_decremented_total",
			Help: "Total product units taken out of stock by orders",
		})),
		stockRestored: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoms_stock_units_restored_total",
			Help: "Total product units returned to stock by cancellations and deletions",
		})),
		orderValue: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecoms_order_total_amount",
			Help:    "Total amount of created orders",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		})),
	}
}

// register adds collector to registerer, reusing an identical collector that is already registered.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderCreated counts a created order and the stock units it took.
func (m *OrderMetrics) RecordOrderCreated(units int, total float64) {
	m.ordersCreated.Inc()
	m.stockDecremented.Add(float64(units))
	m.orderValue.Observe(total)
}

// RecordOrderCancelled counts a cancellation and the units it gave back.
func (m *OrderMetrics) RecordOrderCancelled(restoredUnits int) {
	m.ordersCancelled.Inc()
	m.stockRestored.Add(float64(restoredUnits))
}

// RecordOrderDeleted counts a deletion and the units it gave back, if any.
func (m *OrderMetrics) RecordOrderDeleted(restoredUnits int) {
	m.ordersDeleted.Inc()
	m.stockRestored.Add(float64(restoredUnits))
}

// RecordOrderRejected counts an order request that failed a business rule.
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}
