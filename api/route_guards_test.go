package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestIncidentRoutesRegistered(t *testing.T) {
	s := newTestServer(t)
	want := map[string]bool{
		"GET /incidents/showallincidents": false,
		"GET /incidents/incident/{id}":    false,
		"POST /incidents/createincidents": false,
		"GET /incidents/sources":          false,
		"GET /incidents/sources/{id}":     false,
		"POST /incidents/createsource":    false,
		"GET /incidents/tags":             false,
		"GET /incidents/tagtypes":         false,
		"DELETE /incidents/cleardb":       false,
		"POST /incidents/fetchfromds":     false,
		"GET /":                           false,
		"GET /healthz":                    false,
		"GET /api-docs/openapi.yaml":      false,
		"GET /api-docs/openapi.json":      false,
	}
	err := chi.Walk(s.router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		key := method + " " + strings.TrimSuffix(route, "/")
		if route == "/" {
			key = method + " /"
		}
		if _, ok := want[key]; ok {
			want[key] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}
	for route, found := range want {
		if !found {
			t.Fatalf("route not registered: %s", route)
		}
	}
}
