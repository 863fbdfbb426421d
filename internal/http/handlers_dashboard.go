package http

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"paydash/internal/cache"
	"paydash/internal/log"
	"paydash/internal/presentation"
	"paydash/internal/render"
)

// pageData feeds dashboard.html and tiles.html.
type pageData struct {
	presentation.Dashboard
	GrowthUnavailable bool
}

func (s *Server) pageData() pageData {
	return pageData{
		Dashboard:         s.dashboard,
		GrowthUnavailable: s.growthErr != nil,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", s.pageData()); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Dashboard template execution failed", log.FieldError, err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleTiles returns the average-statistics fragment for htmx swaps.
func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "tiles.html", s.pageData()); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Tiles template execution failed", log.FieldError, err)
		ErrorResponse(http.StatusInternalServerError, "failed to render tiles").Write(w)
		return
	}

	resp := NewHTMXResponse().
		TriggerDashboardRefreshed(s.dashboard.FirstYear, s.dashboard.LastYear).
		BodyHTML(buf.Bytes())
	if s.growthErr != nil {
		resp.TriggerNotification(NotificationWarning, "Growth rates are unavailable: "+s.growthErr.Error())
	}
	resp.Write(w)
}

// handleAPIDashboard returns the full chart model. It answers 422 when growth rates
// could not be computed.
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	if s.growthErr != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, s.growthErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.dashboard)
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == presentation.ChartGrowth && s.growthErr != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, s.growthErr.Error())
		return
	}
	model, ok := s.dashboard.Chart(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown chart "+name)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// handleChartImage serves /charts/{name}.{png|svg} from the image cache, drawing on a miss.
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, format, err := parseChartFile(r.PathValue("file"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if name == presentation.ChartGrowth && s.growthErr != nil {
		http.Error(w, s.growthErr.Error(), http.StatusUnprocessableEntity)
		return
	}
	if _, ok := s.dashboard.Chart(name); !ok {
		http.NotFound(w, r)
		return
	}

	img, hit, err := s.chartImage(name, format)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, render.ErrEmptyChart) {
			code = http.StatusNotFound
		}
		s.slog.LogError(ctx, "Chart render failed", err, log.ComponentRender, log.OpRender,
			log.NewFields().WithChart(name, string(format)))
		http.Error(w, http.StatusText(code), code)
		return
	}
	s.slog.LogChartRendered(ctx, name, string(format), len(img.Data), hit)

	w.Header().Set("Content-Type", img.ContentType)
	_, _ = w.Write(img.Data)
}

func (s *Server) chartImage(name string, format render.Format) (cache.Image, bool, error) {
	draw := func() (cache.Image, error) {
		start := time.Now()
		data, err := s.renderer.Chart(s.dashboard, name, format)
		s.metrics.ObserveRender(name, string(format), time.Since(start), err)
		if err != nil {
			return cache.Image{}, err
		}
		return cache.Image{Data: data, ContentType: format.ContentType()}, nil
	}
	if s.images == nil {
		img, err := draw()
		return img, false, err
	}
	opts := s.renderer.Options()
	key := cache.ImageKey(name, string(format), opts.Width, opts.Height)
	return s.images.GetOrCreate(key, draw)
}

// parseChartFile splits "trend.png" into its chart name and format.
func parseChartFile(file string) (string, render.Format, error) {
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	if name == "" || ext == "" {
		return "", "", errors.New("chart file must look like name.png or name.svg")
	}
	format, err := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		return "", "", err
	}
	return name, format, nil
}
