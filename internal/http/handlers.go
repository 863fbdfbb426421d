package http

import (
	"context"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports whether the dataset source, templates and charts are usable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.backend == nil:
		checks["backend"] = "not_configured"
	default:
		if err := s.backend.Ping(ctx); err != nil {
			checks["backend"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	// Growth failures degrade the page but do not make it unready.
	if s.growthErr != nil {
		checks["growth"] = "degraded: " + s.growthErr.Error()
	} else {
		checks["growth"] = "ok"
	}

	cacheEntries := 0
	if s.images != nil {
		cacheEntries = s.images.Size()
	}
	checks["chart_cache"] = map[string]interface{}{"entries": cacheEntries}
	checks["rate_limiter"] = map[string]interface{}{"active_clients": s.limiter.ActiveClients()}
	checks["security"] = map[string]interface{}{"suspicious_requests": s.detector.Suspicious()}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
