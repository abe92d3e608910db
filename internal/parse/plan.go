// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

// queryKeys are the object keys checked, in priority order, when a query
// list arrives wrapped in an object instead of a bare array.
var queryKeys = []string{"queries", "search_queries", "items"}

// ReportPlan validates and returns a report plan object extracted from model
// output. The object must carry a string "title" and an array "sections";
// extra fields are preserved. Validation failure is reported as not-found.
func ReportPlan(text string) (map[string]any, bool) {
	v, ok := Extract(text, ShapeObject)
	if !ok {
		return nil, false
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := obj["title"].(string); !ok {
		return nil, false
	}
	if _, ok := obj["sections"].([]any); !ok {
		return nil, false
	}
	return obj, true
}

// SearchQueries returns a non-empty list of search query strings extracted
// from model output. When extraction yields an object, the conventional
// wrapper keys are checked for a nested array. Empty lists and lists with
// non-string elements are rejected.
func SearchQueries(text string) ([]string, bool) {
	v, ok := Extract(text, ShapeArray)
	if !ok {
		return nil, false
	}

	arr, ok := v.([]any)
	if !ok {
		obj, isObj := v.(map[string]any)
		if !isObj {
			return nil, false
		}
		for _, key := range queryKeys {
			if nested, isArr := obj[key].([]any); isArr {
				arr = nested
				ok = true
				break
			}
		}
		if !ok {
			return nil, false
		}
	}

	if len(arr) == 0 {
		return nil, false
	}
	queries := make([]string, 0, len(arr))
	for _, item := range arr {
		s, isStr := item.(string)
		if !isStr {
			return nil, false
		}
		queries = append(queries, s)
	}
	return queries, true
}
