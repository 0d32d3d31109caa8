// Package server exposes the trade journal over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/prices"
	"github.com/rustyeddy/tradejournal/trading"
)

type Config struct {
	Addr        string
	CORSOrigins []string
	Log         zerolog.Logger
	Service     *trading.Service
	// Prices receives manual quotes from PUT /api/prices/{symbol}. Nil
	// disables the route.
	Prices prices.Setter
}

type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	svc    *trading.Service
	prices prices.Setter
	now    func() time.Time
}

func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		svc:    cfg.Service,
		prices: cfg.Prices,
		now:    time.Now,
	}

	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/positions", func(r chi.Router) {
			r.Get("/", s.handleListPositions)
			r.Post("/", s.handleCreatePosition)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPosition)
				r.Delete("/", s.handleDeletePosition)
				r.Post("/trades", s.handleAddTrade)
				r.Get("/pnl", s.handlePositionPnL)
				r.Get("/journal", s.handlePositionJournal)
			})
		})

		r.Get("/pnl", s.handleAllPnL)

		r.Route("/journal", func(r chi.Router) {
			r.Get("/", s.handleListJournal)
			r.Post("/", s.handleCreateJournal)
			r.Get("/{id}", s.handleGetJournal)
			r.Delete("/{id}", s.handleDeleteJournal)
		})

		r.Put("/prices/{symbol}", s.handleSetPrice)

		r.Get("/export/org", s.handleExportOrg)
		r.Get("/export/csv/{kind}", s.handleExportCSV)
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
