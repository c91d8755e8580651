package incidents

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bluewitness-api/core/store"
	"bluewitness-api/core/utils"
)

var ErrNotFound = errors.New("incident not found")

type Service struct {
	store  store.IncidentsStore
	logger *utils.Logger
}

func NewService(st store.IncidentsStore, logger *utils.Logger) *Service {
	return &Service{store: st, logger: logger}
}

func (s *Service) ListAll(ctx context.Context) ([]IncidentView, error) {
	items, err := s.store.ListIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	tags, err := s.store.ListTypesOfForce(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	links, err := s.store.ListIncidentTypeOfForce(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tag links: %w", err)
	}
	return Aggregate(items, sources, tags, links), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*IncidentView, error) {
	inc, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get incident %d: %w", id, err)
	}
	if inc == nil {
		return nil, ErrNotFound
	}
	sources, err := s.store.ListSourcesByIncident(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list sources of %d: %w", id, err)
	}
	tags, err := s.store.ListTypesOfForceByIncident(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list tags of %d: %w", id, err)
	}
	links, err := s.store.ListIncidentTypeOfForceByIncident(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list tag links of %d: %w", id, err)
	}
	view := AggregateOne(*inc, sources, tags, links)
	return &view, nil
}

// Ingest validates every payload before touching the store; the batch is written in one transaction.
func (s *Service) Ingest(ctx context.Context, payloads []IncidentPayload) (store.CreateResult, error) {
	if len(payloads) == 0 {
		return store.CreateResult{}, &ValidationError{Index: -1, Field: "body", Msg: "at least one incident is required"}
	}
	inputs := make([]store.IncidentInput, 0, len(payloads))
	for i, p := range payloads {
		in, err := p.ToInput(i)
		if err != nil {
			return store.CreateResult{}, err
		}
		inputs = append(inputs, in)
	}
	return s.IngestInputs(ctx, inputs, store.CreateOptions{})
}

func (s *Service) IngestInputs(ctx context.Context, inputs []store.IncidentInput, opts store.CreateOptions) (store.CreateResult, error) {
	if len(inputs) == 0 {
		return store.CreateResult{}, nil
	}
	res, err := s.store.CreateIncidents(ctx, inputs, opts)
	if err != nil {
		return store.CreateResult{}, err
	}
	s.logger.Printf("incidents ingested: created=%d skipped=%d", res.Created, res.Skipped)
	return res, nil
}

type SourcePayload struct {
	IncidentID int64  `json:"incident_id"`
	URL        string `json:"src_url"`
	Type       string `json:"src_type"`
}

func (s *Service) CreateSource(ctx context.Context, p SourcePayload) (*store.Source, error) {
	if p.IncidentID <= 0 {
		return nil, &ValidationError{Index: -1, Field: "incident_id", Msg: "required"}
	}
	raw := strings.TrimSpace(p.URL)
	if raw == "" {
		return nil, &ValidationError{Index: -1, Field: "src_url", Msg: "required"}
	}
	if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ValidationError{Index: -1, Field: "src_url", Msg: "must be an absolute URL"}
	}
	inc, err := s.store.GetIncident(ctx, p.IncidentID)
	if err != nil {
		return nil, fmt.Errorf("get incident %d: %w", p.IncidentID, err)
	}
	if inc == nil {
		return nil, ErrNotFound
	}
	src := &store.Source{IncidentID: p.IncidentID, URL: raw, Type: strings.TrimSpace(p.Type)}
	if _, err := s.store.CreateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

func (s *Service) Sources(ctx context.Context) ([]store.Source, error) {
	return s.store.ListSources(ctx)
}

func (s *Service) SourcesByIncident(ctx context.Context, incidentID int64) ([]store.Source, error) {
	return s.store.ListSourcesByIncident(ctx, incidentID)
}

func (s *Service) Tags(ctx context.Context) ([]store.TypeOfForce, error) {
	return s.store.ListTypesOfForce(ctx)
}

func (s *Service) TagLinks(ctx context.Context) ([]store.IncidentTypeOfForce, error) {
	return s.store.ListIncidentTypeOfForce(ctx)
}

func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear database: %w", err)
	}
	s.logger.Printf("database cleared: %d incidents removed", n)
	return n, nil
}
