// Package spec provides the document tree that chart specifications are
// parsed into, together with the helpers the normalizer uses to read and
// mutate it.
//
// A specification is an arbitrarily nested mapping. Authors write it in
// HJSON (a permissive JSON superset with comments, unquoted keys and
// trailing commas); [Parse] decodes that text into a plain
// map[string]any tree so every downstream stage works on ordinary Go
// values.
//
// # Usage
//
//	doc, err := spec.Parse([]byte(`{ $schema: "...", marks: [] }`))
//	if err != nil {
//	    return err
//	}
//	spec.SetDefault(doc, "#54B399", "config", "mark", "color")
package spec

import (
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/matzehuels/vegadeck/pkg/errors"
)

// Document is a decoded chart specification tree. Nested objects are
// map[string]any, arrays are []any, and numbers are float64, matching
// the encoding/json conventions.
type Document = map[string]any

// Parse decodes a raw specification blob. The syntax is HJSON, which
// accepts standard JSON as well as unquoted keys, comments and trailing
// commas. Inputs whose top level is not a mapping fail with an
// INVALID_SPEC error.
func Parse(data []byte) (Document, error) {
	if err := errors.ValidateSpecText(data); err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := hjson.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid specification")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidSpec, "specification must be an object")
	}
	return doc, nil
}

// SetDefault sets value at the given key path unless a value is already
// present there. Intermediate mappings are created as needed. If an
// intermediate key exists but holds a non-mapping value, the call is a
// no-op rather than an error. It reports whether the value was written.
func SetDefault(doc Document, value any, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}
	m := doc
	for _, key := range path[:len(path)-1] {
		child, ok := m[key]
		if !ok {
			next := map[string]any{}
			m[key] = next
			m = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return false
		}
		m = next
	}
	last := path[len(path)-1]
	if _, ok := m[last]; ok {
		return false
	}
	m[last] = value
	return true
}

// Lookup walks the key path and returns the value found there.
func Lookup(doc Document, path ...string) (any, bool) {
	var v any = doc
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if v, ok = m[key]; !ok {
			return nil, false
		}
	}
	return v, true
}

// String returns the string stored under key.
func String(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Bool returns the boolean stored under key.
func Bool(m map[string]any, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// Number returns the numeric value stored under key. Integers that
// survived decoding as non-float types are converted.
func Number(m map[string]any, key string) (float64, bool) {
	return AsNumber(m[key])
}

// AsNumber converts a decoded scalar to float64 when it is numeric.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Mapping returns the nested mapping stored under key.
func Mapping(m map[string]any, key string) (map[string]any, bool) {
	child, ok := m[key].(map[string]any)
	return child, ok
}
