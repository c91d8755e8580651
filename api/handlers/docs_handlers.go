package handlers

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// DocsHandler serves the OpenAPI description of the incidents API.
type DocsHandler struct {
	once    sync.Once
	jsonDoc any
	jsonErr error
}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

func (h *DocsHandler) YAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIYAML)
}

func (h *DocsHandler) JSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		var doc any
		if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
			h.jsonErr = err
			return
		}
		h.jsonDoc = stringKeys(doc)
	})
	if h.jsonErr != nil {
		writeMessage(w, http.StatusInternalServerError, "Request Error")
		return
	}
	writeJSON(w, http.StatusOK, h.jsonDoc)
}

// stringKeys rewrites yaml maps with non-string keys so encoding/json accepts them.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = stringKeys(t[i])
		}
		return t
	}
	return v
}
