// Package models holds the typed views of the Evolution API's JSON
// payloads. The gateway renames fields, changes nesting and mixes value
// types between versions, so decoding here is deliberately tolerant:
// known spellings are folded into canonical fields and open-ended maps
// keep their original value types.
package models

import (
	"bytes"
	"encoding/json"
)

// decodeObject unmarshals data into a string-keyed map while preserving
// the JSON type of every value. Numbers decode as json.Number so integer
// fields are not flattened into float64.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// stringField returns m[key] when it holds a string, else "".
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// firstNonEmpty returns the first value that is not "".
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// isJSONObject reports whether raw starts an object literal.
func isJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// unwrapKey returns the object nested under key when data is an object
// carrying one there, else data unchanged. Several find/set endpoints
// wrap their payload in a single-key envelope on some gateway versions.
func unwrapKey(data []byte, key string) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err == nil {
		if nested, ok := envelope[key]; ok && isJSONObject(nested) {
			return nested
		}
	}
	return data
}

// isJSONArray reports whether raw starts an array literal.
func isJSONArray(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
