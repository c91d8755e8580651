package api

import (
	"bluewitness-api/api/handlers"
	"bluewitness-api/api/routegroups"
	"github.com/go-chi/chi/v5"
)

type routeHandlers struct {
	health    *handlers.HealthHandler
	docs      *handlers.DocsHandler
	incidents *handlers.IncidentsHandler
	sync      *handlers.SyncHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		health:    handlers.NewHealthHandler(s.db),
		docs:      handlers.NewDocsHandler(),
		incidents: handlers.NewIncidentsHandler(s.incidentsSvc, s.logger),
		sync:      handlers.NewSyncHandler(s.syncer, s.logger),
	}
}

func (s *Server) registerRoutes(r chi.Router, h routeHandlers) {
	r.Get("/", h.health.Root)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/api-docs/openapi.yaml", h.docs.YAML)
	r.Get("/api-docs/openapi.json", h.docs.JSON)
	routegroups.RegisterIncidents(r, h.incidents, h.sync)
}
