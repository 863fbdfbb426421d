package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"paydash/internal/backend"
	"paydash/internal/cache"
	"paydash/internal/core"
	"paydash/internal/log"
	"paydash/internal/metrics"
	"paydash/internal/middleware/ratelimit"
	"paydash/internal/middleware/security"
	"paydash/internal/middleware/trace"
	"paydash/internal/presentation"
	"paydash/internal/render"
	appweb "paydash/web"
)

const (
	staticMaxAge = 3600
	imageMaxAge  = 300
)

// Options wires a Server. Dataset, Renderer and Metrics are required.
type Options struct {
	Addr     string
	Dataset  core.Dataset
	Adapter  presentation.Adapter
	Renderer *render.Renderer
	Metrics  *metrics.Metrics
	Logger   *log.Logger

	// Backend is pinged by /readyz. Optional.
	Backend backend.Backend
	// Images caches rendered charts. Nil disables caching.
	Images *cache.LRUCache[cache.Image]
	// ImagesPerMinute caps chart image requests per client.
	ImagesPerMinute int
}

// Server serves the dashboard page, its fragments, the JSON models and chart images.
type Server struct {
	http.Server

	templates *template.Template
	dashboard presentation.Dashboard
	growthErr error

	backend  backend.Backend
	renderer *render.Renderer
	images   *cache.LRUCache[cache.Image]
	metrics  *metrics.Metrics
	detector *security.Detector
	limiter  *ratelimit.Limiter
	slog     *log.StructuredLogger
	started  time.Time
}

// NewServer builds the dashboard once and registers every route. A growth calculation
// failure is not fatal: the page shows a placeholder for that chart.
func NewServer(opts Options) (*Server, error) {
	if opts.Renderer == nil || opts.Metrics == nil {
		return nil, errors.New("http: renderer and metrics are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	dashboard, err := opts.Adapter.Prepare(opts.Dataset)
	var growthErr *core.GrowthError
	switch {
	case errors.As(err, &growthErr):
		opts.Logger.WithComponent(log.ComponentDashboard).Warn("Growth rates unavailable, rendering dashboard without them",
			log.FieldOperation, log.OpGrowth,
			log.FieldMetric, growthErr.Metric.Slug(),
			log.FieldYear, growthErr.Year,
			log.FieldError, growthErr.Error())
		opts.Metrics.GrowthFailed()
	case err != nil:
		return nil, fmt.Errorf("prepare dashboard: %w", err)
	}
	opts.Metrics.SetDataset(opts.Dataset)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		templates: t,
		dashboard: dashboard,
		backend:   opts.Backend,
		renderer:  opts.Renderer,
		images:    opts.Images,
		metrics:   opts.Metrics,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ImagesPerMinute}),
		slog:      log.NewStructuredLogger(opts.Logger),
		started:   time.Now(),
	}
	if growthErr != nil {
		s.growthErr = growthErr
	}

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.CacheControl(staticMaxAge)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	limited := s.limiter.Middleware(s.detector.ClientIP, s.onRateLimit)
	mux.Handle("GET /charts/{file}", limited(security.CacheControl(imageMaxAge)(http.HandlerFunc(s.handleChartImage))))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/tiles", s.handleTiles)
	mux.HandleFunc("GET /api/dashboard", s.handleAPIDashboard)
	mux.HandleFunc("GET /api/charts/{name}", s.handleAPIChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", opts.Metrics.Handler())

	tracer := trace.NewMiddleware(opts.Logger, s.detector.ClientIP, opts.Metrics)
	h := trace.RecordRoute(mux)
	h = s.inspect(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(opts.Logger)(h)
	h = tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// RunBackground evicts idle rate-limit clients until ctx is done.
func (s *Server) RunBackground(ctx context.Context) error {
	return s.limiter.Run(ctx)
}

// inspect logs probing requests. They are still served; the router rejects anything
// that does not match a route.
func (s *Server) inspect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Inspect(r); reason != "" {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request", "reason", reason, log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(r *http.Request, clientIP string) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
}

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"chartURL": func(name, format string) string {
		return "/charts/" + name + "." + format
	},
	"seriesName": func(c presentation.XYChart) string {
		if len(c.Series) == 0 {
			return c.Title
		}
		return c.Series[0].Name
	},
	"tileStyle": func(color string) template.CSS {
		if !presentation.ValidColor(color) {
			return ""
		}
		return template.CSS("background-color: " + color)
	},
}
