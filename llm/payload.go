package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const wrapperKey = "requestBody"

// Payload is the caller's JSON object keyed by field name.
type Payload map[string]json.RawMessage

// Normalize decodes body and unwraps a non-null "requestBody" member. A
// wrapper that is not an object yields an empty payload, which then fails
// the route's field checks.
func Normalize(body []byte) (Payload, error) {
	top, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	wrapped, ok := top[wrapperKey]
	if !ok || isNull(wrapped) {
		return top, nil
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(wrapped, &inner); err != nil || inner == nil {
		return Payload{}, nil
	}
	return Payload(inner), nil
}

func decodeObject(body []byte) (Payload, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("llm: decode request body: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("llm: request body must be a json object")
	}
	return Payload(top), nil
}

// Truthy follows JavaScript truthiness: absent, null, false, 0 and "" are
// false; objects and arrays are true even when empty.
func (p Payload) Truthy(name string) bool {
	raw, ok := p[name]
	if !ok {
		return false
	}
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, isNull(raw), string(raw) == "false":
		return false
	case raw[0] == '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		n, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && n != 0
	}
	return true
}

// String returns the field when it holds a JSON string, otherwise "".
func (p Payload) String(name string) string {
	var s string
	if err := json.Unmarshal(p[name], &s); err != nil {
		return ""
	}
	return s
}

// Text renders a field for interpolation: strings verbatim, anything else
// as compact JSON.
func (p Payload) Text(name string) string {
	raw, ok := p[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// Pretty renders a field as JSON indented by two spaces.
func (p Payload) Pretty(name string) string {
	raw, ok := p[name]
	if !ok {
		return ""
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, bytes.TrimSpace(raw), "", "  "); err != nil {
		return string(raw)
	}
	return indented.String()
}

// JSON renders a field as compact JSON, so strings keep their quotes.
func (p Payload) JSON(name string) string {
	raw, ok := p[name]
	if !ok {
		return "null"
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
