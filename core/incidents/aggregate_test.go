package incidents

import (
	"encoding/json"
	"testing"

	"bluewitness-api/core/store"
	"github.com/stretchr/testify/require"
)

func TestAggregateJoinsByIncident(t *testing.T) {
	items := []store.Incident{{ID: 1, CaseID: "a"}, {ID: 2, CaseID: "b"}, {ID: 3, CaseID: "c"}}
	sources := []store.Source{
		{ID: 10, IncidentID: 2, URL: "http://b1"},
		{ID: 11, IncidentID: 1, URL: "http://a1"},
		{ID: 12, IncidentID: 2, URL: "http://b2"},
	}
	tags := []store.TypeOfForce{{ID: 100, Name: "tear-gas"}, {ID: 101, Name: "arrest"}}
	links := []store.IncidentTypeOfForce{
		{ID: 1, IncidentID: 1, TypeOfForceID: 101},
		{ID: 2, IncidentID: 1, TypeOfForceID: 100},
		{ID: 3, IncidentID: 2, TypeOfForceID: 101},
		{ID: 4, IncidentID: 9, TypeOfForceID: 100},
	}

	views := Aggregate(items, sources, tags, links)
	require.Len(t, views, 3)
	require.Equal(t, "a", views[0].CaseID)
	require.Equal(t, []string{"arrest", "tear-gas"}, views[0].Categories)
	require.Len(t, views[0].Sources, 1)
	require.Equal(t, "http://a1", views[0].Sources[0].URL)

	require.Equal(t, []string{"arrest"}, views[1].Categories)
	require.Equal(t, "http://b1", views[1].Sources[0].URL)
	require.Equal(t, "http://b2", views[1].Sources[1].URL)

	require.NotNil(t, views[2].Sources)
	require.NotNil(t, views[2].Categories)
	require.Empty(t, views[2].Sources)
	require.Empty(t, views[2].Categories)
}

func TestAggregateEmptyIncidentsIsEmptySlice(t *testing.T) {
	views := Aggregate(nil, nil, nil, nil)
	require.NotNil(t, views)
	raw, err := json.Marshal(views)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(raw))
}

func TestIncidentViewJSONShape(t *testing.T) {
	view := AggregateOne(store.Incident{ID: 7, CaseID: "mn-minneapolis-28"}, nil, nil, nil)
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, float64(7), decoded["incident_id"])
	require.Equal(t, "mn-minneapolis-28", decoded["case_id"])
	require.Equal(t, []any{}, decoded["src"])
	require.Equal(t, []any{}, decoded["categories"])
}
