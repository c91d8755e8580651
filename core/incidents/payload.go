package incidents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bluewitness-api/core/store"
	"bluewitness-api/core/utils"
)

// Flag decodes a force-level flag given either as a JSON boolean or as 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	switch strings.ToLower(raw) {
	case "", "null", "false", "0":
		*f = false
		return nil
	case "true", "1":
		*f = true
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid flag value %s", string(data))
	}
	*f = n != 0
	return nil
}

// IncidentPayload is one element of a createincidents request body.
type IncidentPayload struct {
	CaseID            string   `json:"case_id"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Title             string   `json:"title"`
	Lat               float64  `json:"lat"`
	Long              float64  `json:"long"`
	Description       string   `json:"description"`
	Dates             string   `json:"dates"`
	Verbalization     Flag     `json:"verbalization"`
	EmptyHandSoft     Flag     `json:"empty_hand_soft"`
	EmptyHandHard     Flag     `json:"empty_hand_hard"`
	LessLethalMethods Flag     `json:"less_lethal_methods"`
	LethalForce       Flag     `json:"lethal_force"`
	Uncategorized     Flag     `json:"uncategorized"`
	Links             []string `json:"links"`
	Tags              []string `json:"tags"`
}

type ValidationError struct {
	Index int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("incident[%d].%s: %s", e.Index, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

const maxDescriptionLen = 1000

// ToInput validates the payload and converts it into a store input.
func (p IncidentPayload) ToInput(index int) (store.IncidentInput, error) {
	fail := func(field, msg string) (store.IncidentInput, error) {
		return store.IncidentInput{}, &ValidationError{Index: index, Field: field, Msg: msg}
	}
	inc := store.Incident{
		CaseID:            strings.TrimSpace(p.CaseID),
		City:              strings.TrimSpace(p.City),
		State:             strings.TrimSpace(p.State),
		Title:             strings.TrimSpace(p.Title),
		Lat:               p.Lat,
		Long:              p.Long,
		Description:       strings.TrimSpace(p.Description),
		Date:              strings.TrimSpace(p.Dates),
		Verbalization:     bool(p.Verbalization),
		EmptyHandSoft:     bool(p.EmptyHandSoft),
		EmptyHandHard:     bool(p.EmptyHandHard),
		LessLethalMethods: bool(p.LessLethalMethods),
		LethalForce:       bool(p.LethalForce),
		Uncategorized:     bool(p.Uncategorized),
	}
	switch {
	case inc.CaseID == "":
		return fail("case_id", "required")
	case inc.City == "":
		return fail("city", "required")
	case inc.State == "":
		return fail("state", "required")
	case inc.Title == "":
		return fail("title", "required")
	case math.IsNaN(inc.Lat) || inc.Lat < -90 || inc.Lat > 90:
		return fail("lat", "must be between -90 and 90")
	case math.IsNaN(inc.Long) || inc.Long < -180 || inc.Long > 180:
		return fail("long", "must be between -180 and 180")
	case len([]rune(inc.Description)) > maxDescriptionLen:
		return fail("description", fmt.Sprintf("longer than %d characters", maxDescriptionLen))
	}
	if _, err := utils.ParseDateTime(inc.Date); err != nil {
		return fail("dates", "unrecognized date")
	}
	return store.IncidentInput{
		Incident: inc,
		Links:    normalizeLinks(p.Links),
		Tags:     normalizeTags(p.Tags),
	}, nil
}

func normalizeLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if v := strings.TrimSpace(l); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		v := strings.TrimSpace(t)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DecodePayloads accepts either a JSON array of payloads or a single payload object.
func DecodePayloads(data []byte) ([]IncidentPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Index: -1, Field: "body", Msg: "empty"}
	}
	if trimmed[0] == '{' {
		var one IncidentPayload
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, &ValidationError{Index: -1, Field: "body", Msg: err.Error()}
		}
		return []IncidentPayload{one}, nil
	}
	var many []IncidentPayload
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, &ValidationError{Index: -1, Field: "body", Msg: err.Error()}
	}
	return many, nil
}
