package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций сервиса заказов.
type OrderMetrics struct {
	// Счётчики операций и их ошибок, по имени операции.
	opsTotal  *prometheus.CounterVec
	opsFailed *prometheus.CounterVec

	// Гистограмма времени выполнения операции.
	opDuration *prometheus.HistogramVec
}

// NewOrderMetrics создаёт метрики, зарегистрированные в default registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		opsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cafe_order_operations_total",
			Help: "Total number of order service operations",
		}, []string{"operation"}),
		opsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cafe_order_operation_errors_total",
			Help: "Total number of failed order service operations",
		}, []string{"operation"}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "cafe_order_operation_duration_seconds",
			Help:    "Duration of order service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

// ObserveOperation фиксирует завершение операции сервиса.
func (m *OrderMetrics) ObserveOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues(operation).Inc()
	if err != nil {
		m.opsFailed.WithLabelValues(operation).Inc()
	}
	m.opDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// registerCounterVec регистрирует счётчик, переиспользуя уже
// зарегистрированный коллектор при повторной инициализации.
func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*prometheus.CounterVec); ok2 {
				return existing
			}
		}
	}
	return counter
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*prometheus.HistogramVec); ok2 {
				return existing
			}
		}
	}
	return histogram
}
