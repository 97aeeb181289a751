package models

import (
	"encoding/json"
)

// Document is a JSON object held as raw fragments. Records are stored with
// their full client document verbatim, so fields the server does not model
// must survive read-modify-write untouched; a Document only re-encodes the
// keys that were explicitly set.
type Document map[string]json.RawMessage

// ParseDocument decodes raw into a Document. The input must be a JSON object.
func ParseDocument(raw []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d Document) Marshal() (json.RawMessage, error) {
	return json.Marshal(map[string]json.RawMessage(d))
}

// String returns the string value at key, or "" when absent or not a string.
func (d Document) String(key string) string {
	raw, ok := d[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Float returns the numeric value at key under FlexFloat rules.
func (d Document) Float(key string) float64 {
	raw, ok := d[key]
	if !ok {
		return 0
	}
	var f FlexFloat
	_ = f.UnmarshalJSON(raw)
	return f.Float64()
}

// Bool returns the boolean value at key, or false when absent or not a bool.
func (d Document) Bool(key string) bool {
	raw, ok := d[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// Object returns the nested object at key, or nil when absent or malformed.
func (d Document) Object(key string) Document {
	raw, ok := d[key]
	if !ok {
		return nil
	}
	nested, err := ParseDocument(raw)
	if err != nil {
		return nil
	}
	return nested
}

// Set marshals v and stores it at key.
func (d Document) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d[key] = raw
	return nil
}
