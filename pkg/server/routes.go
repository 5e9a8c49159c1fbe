package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/seatmap/pkg/detail"
	serrors "github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/geom"
	"github.com/matzehuels/seatmap/pkg/pipeline"
)

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger.StandardLog(), NoColor: true}))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)
	r.Get("/live", s.hub.serveWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", s.handleIndex)
		r.Get("/chart.{format}", s.handleChart)
		r.Route("/api", func(r chi.Router) {
			r.Get("/sections", s.handleSections)
			r.Get("/sections/{id}", s.handleSection)
			r.Get("/sections/{id}/detail", s.handleSectionDetail)
			r.Get("/sessions", s.handleSessions)
			r.Post("/reload", s.handleReload)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "live": s.hub.count()}
	if c := s.current(); c != nil {
		resp["sections"] = len(c.diagram.IDs())
		resp["loaded_at"] = c.loadedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.cfg.Sessions.List(r.Context())
	if err != nil {
		writeError(w, serrors.Wrap(serrors.ErrCodeInternal, err, "list sessions"))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.requireChart(w)
	if !ok {
		return
	}

	format := chi.URLParam(r, "format")
	opts, err := s.chartOptions(format, r)
	if err != nil {
		writeError(w, err)
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), c.diagram, c.records, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheHeader(hit))
	_, _ = w.Write(artifacts[format])
}

// chartOptions applies query overrides to the base options:
//
//	select=<id> labels=false background=false y_axis=up|down
//	width=<px> height=<px> popups=false
func (s *Server) chartOptions(format string, r *http.Request) (pipeline.Options, error) {
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, err
	}
	opts := s.cfg.Options
	opts.Formats = []string{format}
	opts.Popups = format == pipeline.FormatSVG

	q := r.URL.Query()
	if v := q.Get("select"); v != "" {
		opts.Selected = v
	}
	if v := q.Get("y_axis"); v != "" {
		opts.YAxis = v
	}
	for name, dst := range map[string]*bool{"labels": &opts.NoLabels, "background": &opts.NoBackground, "popups": &opts.Popups} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, serrors.New(serrors.ErrCodeInvalidInput, "%s: want true or false, got %q", name, v)
		}
		if name == "popups" {
			*dst = b
		} else {
			*dst = !b
		}
	}
	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, serrors.New(serrors.ErrCodeInvalidInput, "%s: want a number, got %q", name, v)
		}
		*dst = f
	}
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

type sectionSummary struct {
	ID        string     `json:"id"`
	Parts     int        `json:"parts"`
	Label     geom.Point `json:"label"`
	HasRecord bool       `json:"has_record"`
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	c, ok := s.requireChart(w)
	if !ok {
		return
	}
	ids := c.diagram.IDs()
	out := make([]sectionSummary, 0, len(ids))
	for _, id := range ids {
		label, _ := c.diagram.Label(id)
		_, has := c.records.Get(id)
		out = append(out, sectionSummary{
			ID:        id,
			Parts:     len(c.diagram.Parts(id)),
			Label:     label,
			HasRecord: has,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	content, ok := s.sectionContent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleSectionDetail(w http.ResponseWriter, r *http.Request) {
	content, ok := s.sectionContent(w, r)
	if !ok {
		return
	}
	html, err := detail.HTMLRenderer{}.Render(content)
	if err != nil {
		writeError(w, serrors.Wrap(serrors.ErrCodeInternal, err, "render detail"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) sectionContent(w http.ResponseWriter, r *http.Request) (detail.Content, bool) {
	c, ok := s.requireChart(w)
	if !ok {
		return detail.Content{}, false
	}
	id := chi.URLParam(r, "id")
	if err := serrors.ValidateSectionID(id); err != nil {
		writeError(w, err)
		return detail.Content{}, false
	}
	if !c.diagram.Has(id) {
		writeError(w, serrors.New(serrors.ErrCodeNotFound, "section %q not found", id))
		return detail.Content{}, false
	}
	return detail.Lookup(id, c.records), true
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	c := s.current()
	writeJSON(w, http.StatusOK, map[string]any{
		"sections": len(c.diagram.IDs()),
		"records":  len(c.records),
	})
}

func (s *Server) requireChart(w http.ResponseWriter) (*chart, bool) {
	c := s.current()
	if c == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chart not loaded"})
		return nil, false
	}
	return c, true
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := map[string]string{"error": serrors.UserMessage(err)}
	if code := serrors.GetCode(err); code != "" {
		resp["code"] = string(code)
	}
	writeJSON(w, serrors.HTTPStatus(err), resp)
}
