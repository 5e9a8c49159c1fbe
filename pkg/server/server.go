// Package server serves a seating chart over HTTP.
//
// # Routes
//
//	GET  /                        browser page with the live chart
//	GET  /healthz                 liveness and section count
//	GET  /chart.{format}          rendered chart (svg, png, geojson, json, dot, overview)
//	GET  /api/sections            section ids, label anchors and record availability
//	GET  /api/sections/{id}       detail content as JSON
//	GET  /api/sections/{id}/detail detail panel as an HTML fragment
//	GET  /api/sessions            connected live viewers
//	POST /api/reload              reload the diagram and records
//	GET  /live                    websocket interaction session
//
// Every websocket connection owns an [interaction.Controller]. The browser
// sends pointer events; the controller answers with style, tooltip and
// detail operations. A reload, whether triggered by the file watcher or by
// POST /api/reload, resets every live controller. Interaction state is never
// stored: a reconnecting browser starts with nothing hovered or selected.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/seatmap/pkg/diagram"
	serrors "github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/pipeline"
	"github.com/matzehuels/seatmap/pkg/records"
	"github.com/matzehuels/seatmap/pkg/session"
	"github.com/matzehuels/seatmap/pkg/style"
	"github.com/matzehuels/seatmap/pkg/tooltip"
)

// Config holds server configuration.
type Config struct {
	Addr            string
	AllowAllOrigins bool          // allow all CORS origins (dev mode)
	Watch           bool          // reload when local sources change
	Debounce        time.Duration // quiet period before a watched change reloads

	// Options is the base pipeline configuration. Diagram is required;
	// requests may override render options per call.
	Options pipeline.Options

	TooltipSize tooltip.Size
	Runner      *pipeline.Runner
	Sessions    session.Store
	Logger      *log.Logger
}

// Server is the chart server.
type Server struct {
	cfg        Config
	runner     *pipeline.Runner
	logger     *log.Logger
	router     chi.Router
	httpServer *http.Server
	hub        *hub

	mu    sync.RWMutex
	chart *chart
	gen   uint64
}

// chart is one loaded diagram with its records. It is replaced as a whole on
// reload and never mutated. gen increases with every reload.
type chart struct {
	gen      uint64
	diagram  *diagram.Diagram
	records  records.Lookup
	resolver *style.Resolver
	loadedAt time.Time
}

// New creates a server. Call [Server.Reload] or [Server.Run] before serving.
func New(cfg Config) (*Server, error) {
	if cfg.Options.Diagram == "" {
		return nil, serrors.New(serrors.ErrCodeConfiguration, "server: diagram source is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	if cfg.TooltipSize == (tooltip.Size{}) {
		cfg.TooltipSize = tooltip.Size{W: 200, H: 100}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, nil, cfg.Logger)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	cfg.Options.Logger = cfg.Logger
	if err := cfg.Options.ValidateForRender(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}
	s.hub = newHub(s)
	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Reload loads the diagram and records and resets every live session.
func (s *Server) Reload(ctx context.Context) error {
	d, recs, err := s.runner.Load(ctx, s.cfg.Options)
	if err != nil {
		return err
	}
	c := &chart{
		diagram:  d,
		records:  recs,
		resolver: style.NewResolver(*s.cfg.Options.Palette, d),
		loadedAt: time.Now(),
	}

	s.mu.Lock()
	s.gen++
	c.gen = s.gen
	s.chart = c
	s.mu.Unlock()

	s.logger.Info("chart loaded", "sections", len(d.IDs()), "records", len(recs))
	s.hub.reload(c)
	return nil
}

func (s *Server) current() *chart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chart
}

// Run loads the chart and serves until ctx is cancelled. With Watch set, a
// change to a local diagram or records file triggers a reload.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if s.cfg.Watch {
		paths := watchablePaths(s.cfg.Options.Diagram, s.cfg.Options.Records)
		if len(paths) > 0 {
			w, err := NewWatcher(paths, s.cfg.Debounce, s.logger)
			if err != nil {
				return err
			}
			g.Go(func() error {
				return w.Run(gctx, func() {
					if err := s.Reload(gctx); err != nil {
						s.logger.Error("reload failed, keeping previous chart", "err", serrors.UserMessage(err))
					}
				})
			})
		}
	}

	g.Go(func() error {
		ticker := time.NewTicker(session.DefaultTTL)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := s.cfg.Sessions.Cleanup(gctx); err != nil {
					s.logger.Warn("session cleanup failed", "err", err)
				}
			}
		}
	})

	g.Go(func() error {
		s.logger.Info("serving chart", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
