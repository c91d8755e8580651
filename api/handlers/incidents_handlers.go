package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bluewitness-api/core/incidents"
	"bluewitness-api/core/store"
	"bluewitness-api/core/utils"
)

type IncidentsHandler struct {
	svc    *incidents.Service
	logger *utils.Logger
}

func NewIncidentsHandler(svc *incidents.Service, logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{svc: svc, logger: logger}
}

func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.failBody(w, err)
		return
	}
	payloads, err := incidents.DecodePayloads(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Ingest(r.Context(), payloads)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Success!", "created": res.Created})
}

func (h *IncidentsHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Sources(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) ListIncidentSources(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	items, err := h.svc.SourcesByIncident(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var payload incidents.SourcePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.failBody(w, err)
		return
	}
	src, err := h.svc.CreateSource(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (h *IncidentsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Tags(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) ListTagTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.TagLinks(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) ClearDB(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All database contents have been deleted", "deleted": n})
}

func (h *IncidentsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *incidents.ValidationError
	switch {
	case errors.Is(err, incidents.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Incident not found")
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrConflict):
		writeMessage(w, http.StatusConflict, "Incident already exists")
	default:
		if h.logger != nil {
			h.logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		}
		writeMessage(w, http.StatusInternalServerError, "Request Error")
	}
}

func (h *IncidentsHandler) failBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeMessage(w, http.StatusBadRequest, "bad request")
}
