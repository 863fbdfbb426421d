package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, JSON: true, Output: &buf})

	logger.Info("starting", FieldBackend, "memory")
	logger.WithComponent(ComponentRender).Debug("drawn", FieldChart, "trend")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, ComponentApp, recs[0][FieldComponent])
	assert.Equal(t, "memory", recs[0][FieldBackend])
	assert.Equal(t, ComponentRender, recs[1][FieldComponent])
	assert.Equal(t, "trend", recs[1][FieldChart])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, JSON: true, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, JSON: true, Output: &buf})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "req-1", recs[0][FieldRequestID])
	assert.Equal(t, ComponentHTTP, recs[0][FieldComponent])
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, JSON: true, Output: &buf}))
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/charts/trend.png?x=1", nil)
	sl.LogHTTPEnd(ctx, req, http.StatusNotFound, 12, "10.0.0.1")
	sl.LogChartRendered(ctx, "trend", "png", 2048, true)
	sl.LogError(ctx, "growth failed", errors.New("boom"), ComponentDashboard, OpGrowth, nil)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "/charts/trend.png", recs[0][FieldPath])
	assert.Equal(t, false, recs[0][FieldSuccess])

	assert.Equal(t, "trend", recs[1][FieldChart])
	assert.Equal(t, true, recs[1][FieldCacheHit])
	assert.EqualValues(t, 2048, recs[1][FieldBytes])

	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "boom", recs[2][FieldError])
	assert.Equal(t, OpGrowth, recs[2][FieldOperation])
}
