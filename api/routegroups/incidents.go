package routegroups

import (
	"bluewitness-api/api/handlers"
	"github.com/go-chi/chi/v5"
)

func RegisterIncidents(r chi.Router, incidents *handlers.IncidentsHandler, sync *handlers.SyncHandler) {
	r.Route("/incidents", func(incidentsRouter chi.Router) {
		incidentsRouter.MethodFunc("GET", "/showallincidents", incidents.List)
		incidentsRouter.MethodFunc("GET", "/incident/{id}", incidents.Get)
		incidentsRouter.MethodFunc("POST", "/createincidents", incidents.Create)
		incidentsRouter.MethodFunc("GET", "/sources", incidents.ListSources)
		incidentsRouter.MethodFunc("GET", "/sources/{id}", incidents.ListIncidentSources)
		incidentsRouter.MethodFunc("POST", "/createsource", incidents.CreateSource)
		incidentsRouter.MethodFunc("GET", "/tags", incidents.ListTags)
		incidentsRouter.MethodFunc("GET", "/tagtypes", incidents.ListTagTypes)
		incidentsRouter.MethodFunc("DELETE", "/cleardb", incidents.ClearDB)
		incidentsRouter.MethodFunc("POST", "/fetchfromds", sync.FetchFromDS)
	})
}
