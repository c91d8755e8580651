package dssync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"bluewitness-api/core/incidents"
)

// Record is one row of the data-science dataset.
type Record struct {
	CaseID            string         `json:"case_id"`
	City              string         `json:"city"`
	State             string         `json:"state"`
	Title             string         `json:"title"`
	Lat               float64        `json:"lat"`
	Long              float64        `json:"long"`
	Description       string         `json:"description"`
	Dates             string         `json:"dates"`
	Links             StringList     `json:"links"`
	Tags              StringList     `json:"tags"`
	Verbalization     incidents.Flag `json:"verbalization"`
	EmptyHandSoft     incidents.Flag `json:"empty_hand_soft"`
	EmptyHandHard     incidents.Flag `json:"empty_hand_hard"`
	LessLethalMethods incidents.Flag `json:"less_lethal_methods"`
	LethalForce       incidents.Flag `json:"lethal_force"`
	Uncategorized     incidents.Flag `json:"uncategorized"`
}

func (r Record) Payload() incidents.IncidentPayload {
	return incidents.IncidentPayload{
		CaseID:            r.CaseID,
		City:              r.City,
		State:             r.State,
		Title:             r.Title,
		Lat:               r.Lat,
		Long:              r.Long,
		Description:       r.Description,
		Dates:             r.Dates,
		Verbalization:     r.Verbalization,
		EmptyHandSoft:     r.EmptyHandSoft,
		EmptyHandHard:     r.EmptyHandHard,
		LessLethalMethods: r.LessLethalMethods,
		LethalForce:       r.LethalForce,
		Uncategorized:     r.Uncategorized,
		Links:             []string(r.Links),
		Tags:              []string(r.Tags),
	}
}

// StringList decodes a JSON array of strings or a python-literal list such as "['a', 'b']".
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	items, err := parseLiteralList(raw)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

func parseLiteralList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") {
		return []string{s}, nil
	}
	if !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("unterminated list %q", raw)
	}
	body := s[1 : len(s)-1]
	var (
		out   []string
		cur   strings.Builder
		quote rune
		esc   bool
	)
	for _, r := range body {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case quote != 0 && r == '\\':
			esc = true
		case quote != 0 && r == quote:
			out = append(out, cur.String())
			cur.Reset()
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == ',' || r == ' ' || r == '\t' || r == '\n':
		default:
			return nil, fmt.Errorf("unexpected %q in list %q", r, raw)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string in list %q", raw)
	}
	return out, nil
}

// decodeDataset accepts a bare array or an object wrapping it under "data".
func decodeDataset(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	if trimmed[0] == '{' {
		var wrapped struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		return wrapped.Data, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return rows, nil
}
