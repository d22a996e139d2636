package model

import (
	"encoding/json"
	"errors"
)

var errNotObject = errors.New("not a JSON object")

// Attributes holds the fields of a device or event this client has no
// typed field for, or whose value did not fit the typed field. They are
// written back out untouched.
type Attributes map[string]json.RawMessage

// take decodes fields[key] into dst and drops it from fields when it fits.
// A value that does not fit stays in fields.
func (fields Attributes) take(key string, dst any) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err == nil {
		delete(fields, key)
	}
}

// merge encodes v and lays the attributes over it. Attributes win so a
// value that failed to decode goes back out as it came in.
func (fields Attributes) merge(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(fields) == 0 {
		return data, err
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, raw := range fields {
		out[k] = raw
	}
	return json.Marshal(out)
}

func decodeFields(data []byte) (Attributes, error) {
	fields := Attributes{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotObject
	}
	return fields, nil
}

func (fields Attributes) rest() Attributes {
	if len(fields) == 0 {
		return nil
	}
	return fields
}
