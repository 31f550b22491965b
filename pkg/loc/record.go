package loc

import (
	"encoding/json"
	"strings"
)

// Record is one search result entry. The API guarantees no fixed schema:
// fields come and go between collections, values switch between scalars and
// lists, and image descriptors are nested at varying depths. Record keeps
// the raw decoded JSON and exposes safe path accessors, so an absent or
// oddly shaped field is a normal case rather than an error.
type Record map[string]interface{}

// Value returns the value at a dot-separated path, descending through
// nested objects. The second return is false when any path segment is
// missing or not an object.
func (r Record) Value(path string) (interface{}, bool) {
	parts := strings.Split(path, ".")

	var cur interface{} = map[string]interface{}(r)
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the string value at path
func (r Record) String(path string) (string, bool) {
	v, ok := r.Value(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer value at path. JSON numbers decode as float64,
// so those are accepted and truncated.
func (r Record) Int(path string) (int, bool) {
	v, ok := r.Value(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

// Slice returns the list value at path
func (r Record) Slice(path string) ([]interface{}, bool) {
	v, ok := r.Value(path)
	if !ok {
		return nil, false
	}
	s, ok := v.([]interface{})
	return s, ok
}

// Strings returns the value at path as a list of strings. A bare string
// value is returned as a one-element list; non-string list entries are
// skipped.
func (r Record) Strings(path string) []string {
	v, ok := r.Value(path)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// asRecord converts a decoded JSON value to a Record if it is an object
func asRecord(v interface{}) (Record, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return Record(m), true
}
