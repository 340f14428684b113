package spec

import "github.com/matzehuels/vegadeck/pkg/errors"

// WalkDataURLs visits every data node in the tree that references remote
// data. A data node is any mapping reachable under a key named "data"
// whose url member is itself a mapping (a typed URL descriptor, as
// opposed to a literal string URL, inline values or a named source).
// Arrays thread the parent key through, so the elements of data: [...]
// are each considered.
//
// A matched node must not also carry values or source; that combination
// is ambiguous and fails the walk with a CONFLICTING_DATA_SOURCE error.
// Matched nodes are handed to visit and not descended into further.
func WalkDataURLs(doc Document, visit func(node map[string]any) error) error {
	return walkDataURLs(doc, "", visit)
}

func walkDataURLs(v any, key string, visit func(map[string]any) error) error {
	switch val := v.(type) {
	case []any:
		for _, elem := range val {
			if err := walkDataURLs(elem, key, visit); err != nil {
				return err
			}
		}
	case map[string]any:
		if key == "data" {
			if _, ok := val["url"].(map[string]any); ok {
				if _, has := val["values"]; has {
					return errors.New(errors.ErrCodeConflictingData,
						"data must not have both url and values")
				}
				if _, has := val["source"]; has {
					return errors.New(errors.ErrCodeConflictingData,
						"data must not have both url and source")
				}
				return visit(val)
			}
		}
		for k, child := range val {
			if err := walkDataURLs(child, k, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
