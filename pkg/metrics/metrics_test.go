package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

func TestRecordSale_SumaSoloCompletadas(t *testing.T) {
	m := metrics.New(metrics.Config{})
	m.RecordSale("completed", 100)
	m.RecordSale("rejected", 50)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SalesTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SalesTotal.WithLabelValues("rejected")))
	assert.Equal(t, float64(100), testutil.ToFloat64(m.SaleAmount))
}

func TestRecordTx_Conflicto(t *testing.T) {
	m := metrics.New(metrics.Config{})
	m.RecordTx("create_sale", errors.New("x"), true, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TxConflicts))
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordSale("completed", 1)
		m.RecordMovement("OUT")
	})
}

func TestHandler_Expone(t *testing.T) {
	m := metrics.New(metrics.Config{Namespace: "test"})
	m.RecordMovement("OUT")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_stock_movements_total{type="OUT"} 1`)
}
