package api

import (
	"context"
	"errors"
	"net/http"

	"bluewitness-api/api/handlers"
	"bluewitness-api/config"
	"bluewitness-api/core/incidents"
	"bluewitness-api/core/utils"
	"github.com/go-chi/chi/v5"
)

type BackgroundWorker interface {
	StartWithContext(ctx context.Context)
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	DB           handlers.Pinger
	IncidentsSvc *incidents.Service
	Syncer       handlers.DatasetSyncer
}

type Server struct {
	cfg          *config.AppConfig
	db           handlers.Pinger
	incidentsSvc *incidents.Service
	syncer       handlers.DatasetSyncer
	logger       *utils.Logger
	router       chi.Router
	httpServer   *http.Server
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		db:           deps.DB,
		incidentsSvc: deps.IncidentsSvc,
		syncer:       deps.Syncer,
		logger:       logger,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  cfg.HTTP.EffectiveReadTimeout(),
		WriteTimeout: cfg.HTTP.EffectiveWriteTimeout(),
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.accessLogMiddleware)
	r.Use(s.bodyLimitMiddleware)
	s.registerRoutes(r, s.newRouteHandlers())
	return r
}

// ListenAndServe blocks until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.EffectiveShutdownTimeout())
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
