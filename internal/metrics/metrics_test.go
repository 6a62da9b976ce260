package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCache(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(true)
	m.ObserveCache(false)

	if got := testutil.ToFloat64(m.CacheHits); got != 2 {
		t.Errorf("CacheHits: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses); got != 1 {
		t.Errorf("CacheMisses: got %v, want 1", got)
	}
}

func TestObserveCalculation(t *testing.T) {
	m := New()
	m.ObserveCalculation("option")
	m.ObserveCalculation("option")
	m.ObserveCalculation("greeks")

	if got := testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("option")); got != 2 {
		t.Errorf("option: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("greeks")); got != 1 {
		t.Errorf("greeks: got %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCache(true)
	m.ObserveCalculation("option")
	m.ObserveLoad("ok")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveLoad("not_found")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `derivx_ohlcv_loads_total{result="not_found"} 1`) {
		t.Errorf("metrics output missing load counter:\n%s", body)
	}
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	a, b := New(), New()
	a.ObserveCache(true)
	if got := testutil.ToFloat64(b.CacheHits); got != 0 {
		t.Errorf("second registry CacheHits: got %v, want 0", got)
	}
}
