package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_ObserveRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newHTTPMetricsWithRegisterer(registry)

	started := time.Now().Add(-10 * time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/orders", http.StatusOK, started)
	m.ObserveRequest(http.MethodGet, "/api/v1/orders", http.StatusOK, started)
	m.ObserveRequest(http.MethodPost, "/api/v1/orders", http.StatusBadRequest, started)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/orders", "200")); got != 2 {
		t.Fatalf("unexpected GET counter: %v", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodPost, "/api/v1/orders", "400")); got != 1 {
		t.Fatalf("unexpected POST counter: %v", got)
	}

	if count := testutil.CollectAndCount(m.requestDuration); count == 0 {
		t.Fatal("expected request duration observations")
	}
}

func TestHTTPMetrics_NilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest(http.MethodGet, "/api/v1/orders", http.StatusOK, time.Now())
}

func TestHTTPMetrics_Reregister(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newHTTPMetricsWithRegisterer(registry)
	second := newHTTPMetricsWithRegisterer(registry)

	first.ObserveRequest(http.MethodGet, "/api/v1/dishes", http.StatusOK, time.Now())
	second.ObserveRequest(http.MethodGet, "/api/v1/dishes", http.StatusOK, time.Now())

	if got := testutil.ToFloat64(first.requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/dishes", "200")); got != 2 {
		t.Fatalf("collectors must be shared after re-register, got %v", got)
	}
}
