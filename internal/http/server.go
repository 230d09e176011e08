package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GeorgiiSadunyan/Recomendation/internal/catalog"
	"github.com/GeorgiiSadunyan/Recomendation/internal/config"
	"github.com/GeorgiiSadunyan/Recomendation/internal/posters"
	"github.com/GeorgiiSadunyan/Recomendation/internal/ratings"
	"github.com/GeorgiiSadunyan/Recomendation/internal/recommend"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	catalog *catalog.Catalog
	store   *ratings.Store
	engine  *recommend.Engine
	posters posters.Client
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes. The
// posters client may be nil, in which case responses are not enriched.
func New(cfg config.Config, cat *catalog.Catalog, store *ratings.Store, engine *recommend.Engine, postersClient posters.Client, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		catalog: cat,
		store:   store,
		engine:  engine,
		posters: postersClient,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.router.Get("/genres", s.handleListGenres)
	s.router.Get("/movies", s.handleSearchMovies)
	s.router.Get("/stats", s.handleStats)
	s.router.Route("/users", func(r chi.Router) {
		r.Post("/", s.handleCreateUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/onboarding", s.handleOnboarding)
			r.Post("/ratings", s.handleSubmitRatings)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/profile", s.handleProfile)
		})
	})
}

// Start boots the HTTP server and blocks until shutdown or failure.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Stats(); err != nil {
		s.logger.Printf("healthz: rating store unavailable: %v", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
