package dssync

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringListDecodesLiteralAndArray(t *testing.T) {
	var rec struct {
		A StringList `json:"a"`
		B StringList `json:"b"`
		C StringList `json:"c"`
		D StringList `json:"d"`
	}
	body := `{
		"a": "['https://www.facebook.com/1462345700/posts/1', 'https://www.facebook.com/1462345700/posts/2']",
		"b": ["less-lethal", "tear-gas"],
		"c": "[]",
		"d": null
	}`
	require.NoError(t, json.Unmarshal([]byte(body), &rec))
	require.Equal(t, StringList{"https://www.facebook.com/1462345700/posts/1", "https://www.facebook.com/1462345700/posts/2"}, rec.A)
	require.Equal(t, StringList{"less-lethal", "tear-gas"}, rec.B)
	require.Empty(t, rec.C)
	require.Nil(t, rec.D)
}

func TestParseLiteralListQuotes(t *testing.T) {
	items, err := parseLiteralList(`["officer's baton", 'it\'s', "a,b"]`)
	require.NoError(t, err)
	require.Equal(t, []string{"officer's baton", "it's", "a,b"}, items)

	items, err = parseLiteralList("http://single")
	require.NoError(t, err)
	require.Equal(t, []string{"http://single"}, items)

	_, err = parseLiteralList("['open")
	require.Error(t, err)
	_, err = parseLiteralList("[bare]")
	require.Error(t, err)
}

func TestRecordPayloadMapsDatasetRow(t *testing.T) {
	row := `{
		"id": 2,
		"dates": "2020-05-26 00:00:00",
		"added_on": "2020-11-09 10:27:02.369103",
		"links": "['https://example.org/v']",
		"case_id": "mn-minneapolis-28",
		"city": "Minneapolis",
		"state": "Minnesota",
		"lat": 44.9413248,
		"long": -93.2626097,
		"title": "Man has his gun confiscated",
		"description": "Man encounters police arresting people open carrying.",
		"tags": "['abuse-of-power', 'arrest']",
		"verbalization": 0,
		"less_lethal_methods": 0,
		"uncategorized": 1
	}`
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(row), &rec))
	in, err := rec.Payload().ToInput(0)
	require.NoError(t, err)
	require.Equal(t, "mn-minneapolis-28", in.Incident.CaseID)
	require.True(t, in.Incident.Uncategorized)
	require.False(t, in.Incident.Verbalization)
	require.Equal(t, []string{"https://example.org/v"}, in.Links)
	require.Equal(t, []string{"abuse-of-power", "arrest"}, in.Tags)
}

func TestDecodeDatasetWrapped(t *testing.T) {
	rows, err := decodeDataset([]byte(`{"data": [{"case_id":"a"},{"case_id":"b"}]}`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	_, err = decodeDataset([]byte(`"nope"`))
	require.Error(t, err)
}
