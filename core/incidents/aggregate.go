package incidents

import "bluewitness-api/core/store"

// IncidentView is the denormalized incident returned to clients.
type IncidentView struct {
	store.Incident
	Sources    []store.Source `json:"src"`
	Categories []string       `json:"categories"`
}

// Aggregate joins sources and tag names onto every incident. Incident order and the
// order inside each nested slice follow the order of the input rows.
func Aggregate(items []store.Incident, sources []store.Source, tags []store.TypeOfForce, links []store.IncidentTypeOfForce) []IncidentView {
	sourcesByIncident := make(map[int64][]store.Source, len(items))
	for _, src := range sources {
		sourcesByIncident[src.IncidentID] = append(sourcesByIncident[src.IncidentID], src)
	}
	tagNames := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	categoriesByIncident := make(map[int64][]string, len(items))
	for _, l := range links {
		name, ok := tagNames[l.TypeOfForceID]
		if !ok {
			continue
		}
		categoriesByIncident[l.IncidentID] = append(categoriesByIncident[l.IncidentID], name)
	}
	out := make([]IncidentView, 0, len(items))
	for _, inc := range items {
		out = append(out, newView(inc, sourcesByIncident[inc.ID], categoriesByIncident[inc.ID]))
	}
	return out
}

// AggregateOne performs the same join for a single incident; rows belonging to other
// incidents are ignored.
func AggregateOne(inc store.Incident, sources []store.Source, tags []store.TypeOfForce, links []store.IncidentTypeOfForce) IncidentView {
	return Aggregate([]store.Incident{inc}, sources, tags, links)[0]
}

func newView(inc store.Incident, sources []store.Source, categories []string) IncidentView {
	if sources == nil {
		sources = []store.Source{}
	}
	if categories == nil {
		categories = []string{}
	}
	return IncidentView{Incident: inc, Sources: sources, Categories: categories}
}
