package mcp

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hbollon/go-edlib"
)

// UnknownField represents a field that was passed but not recognized
type UnknownField struct {
	Name       string      `json:"name"`
	Value      interface{} `json:"value"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// String renders the warning shown to the client
func (u UnknownField) String() string {
	if u.Suggestion != "" {
		return fmt.Sprintf("unknown parameter '%s' ignored (did you mean '%s'?)", u.Name, u.Suggestion)
	}
	return fmt.Sprintf("unknown parameter '%s' ignored", u.Name)
}

// collectUnknownFields decodes data into raw fields and reports every field
// not listed in known, with the closest known name as a suggestion
func collectUnknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, []UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		field := decodeUnknownField(key, value)
		field.Suggestion = closestField(key, known)
		warnings = append(warnings, field)
	}

	// Map iteration order is random; keep responses stable
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Name < warnings[j].Name })
	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}

// closestField finds the known field with the smallest Levenshtein distance,
// accepting distances up to 2
func closestField(input string, known map[string]struct{}) string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)

	bestMatch := ""
	bestDistance := 1000
	for _, name := range names {
		distance := edlib.LevenshteinDistance(input, name)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = name
		}
	}
	if bestDistance > 2 {
		return ""
	}
	return bestMatch
}
