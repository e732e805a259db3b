package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики движка заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated   prometheus.Counter
	ordersCancelled prometheus.Counter
	ordersDeleted   prometheus.Counter
	statusChanges   *prometheus.CounterVec
	stockRejected   prometheus.Counter
	statisticsScans prometheus.Counter

	// Гистограммы времени выполнения
	createDuration prometheus.Histogram

	// Счётчик возвращённых на склад единиц
	stockRestoredUnits prometheus.Counter
}

// NewOrderMetrics создаёт новый экземпляр метрик движка заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecom_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecom_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecom_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ecom_order_status_changes_total",
			Help: "Total number of order status transitions grouped by target status",
		}, []string{"status"}),
		stockRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecom_order_stock_rejections_total",
			Help: "Total number of order creations rejected due to insufficient stock",
		}),
		statisticsScans: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecom_order_statistics_scans_total",
			Help: "Total number of full-scan statistics computations",
		}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "ecom_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stockRestoredUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecom_order_stock_restored_units_total",
			Help: "Total number of stock units restored by cancellations and deletions",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *OrderMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordStatusChange увеличивает счётчик переходов в указанный статус.
func (m *OrderMetrics) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordStockRejection увеличивает счётчик отказов по нехватке стока.
func (m *OrderMetrics) RecordStockRejection() {
	m.stockRejected.Inc()
}

// RecordStatisticsScan увеличивает счётчик полных сканов статистики.
func (m *OrderMetrics) RecordStatisticsScan() {
	m.statisticsScans.Inc()
}

// RecordCreateDuration записывает время создания заказа.
func (m *OrderMetrics) RecordCreateDuration(duration time.Duration) {
	m.createDuration.Observe(duration.Seconds())
}

// RecordStockRestored увеличивает счётчик возвращённых на склад единиц.
func (m *OrderMetrics) RecordStockRestored(units int64) {
	if units <= 0 {
		return
	}
	m.stockRestoredUnits.Add(float64(units))
}
