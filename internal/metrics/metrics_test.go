package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paydash/internal/core"
)

func TestObserveAndExpose(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveRequest("/charts/", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("/charts/", http.StatusOK, 10*time.Millisecond)
	m.ObserveRender("trend", "png", 5*time.Millisecond, nil)
	m.ObserveRender("growth", "svg", time.Millisecond, errors.New("boom"))
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.GrowthFailed()
	m.SetDataset(core.DefaultDataset())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/charts/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("growth", "svg", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.growthFailures))
	assert.Equal(t, 32.5, testutil.ToFloat64(m.volumes.WithLabelValues("digital-payments")))
	assert.Equal(t, 0.045, testutil.ToFloat64(m.volumes.WithLabelValues("coins")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "paydash_chart_renders_total")
	assert.Contains(t, string(body), "paydash_latest_volume_billions")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewIsIndependent(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	a.GrowthFailed()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.growthFailures))
}
