package convert

import (
	"fmt"
	"reflect"
)

var errNotMap = fmt.Errorf("input data is not a map")
var errNotSlice = fmt.Errorf("input data is not a slice")
var errNotMapElement = fmt.Errorf("slice element is not a map[string]any")

// StringKeyed rewrites decoded documents so that every map is a
// map[string]any. YAML decoders produce map[any]any for mappings with
// non-string keys; those keys are formatted with %v.
func StringKeyed(data any) any {
	switch t := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = StringKeyed(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[fmt.Sprintf("%v", k)] = StringKeyed(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = StringKeyed(v)
		}
		return out
	default:
		return data
	}
}

// ToMap converts a decoded mapping to map[string]any.
// Returns nil map if input is nil.
func ToMap(data any) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	if m, ok := StringKeyed(data).(map[string]any); ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: input type %T", errNotMap, data)
}

// ToSliceOfMap converts slice types ([]map[string]any, []any) to []map[string]any.
// Returns an error if input is not a slice or elements are not mappings.
func ToSliceOfMap(data any) ([]map[string]any, error) {
	if data == nil {
		return []map[string]any{}, nil
	}

	if sliceMap, ok := data.([]map[string]any); ok {
		return sliceMap, nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: input type %T", errNotSlice, data)
	}

	result := make([]map[string]any, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		item := StringKeyed(val.Index(i).Interface())
		if mapItem, okMap := item.(map[string]any); okMap {
			result = append(result, mapItem)
		} else {
			return nil, fmt.Errorf("index %d: %w (type %T)", i, errNotMapElement, item)
		}
	}
	return result, nil
}
