package compare

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/olusolaa/tenant-reconciler/pkg/reflectutil"
)

// Canonicalize returns a copy of v suitable for structural comparison:
// every number becomes a float64 and every mapping a map[string]any.
// With pruneEmpty, map entries holding nil, zero or empty values are removed,
// so an absent field equals an explicit null or default. Slice elements are
// never pruned since their position is meaningful.
func Canonicalize(v any, pruneEmpty bool) any {
	if v == nil {
		return nil
	}
	val := reflectutil.DerefValue(reflect.ValueOf(v))
	if !val.IsValid() {
		return nil
	}

	switch val.Kind() {
	case reflect.Map:
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			keyStr := fmt.Sprintf("%v", iter.Key().Interface())
			child := Canonicalize(iter.Value().Interface(), pruneEmpty)
			if pruneEmpty && reflectutil.IsEmptyValue(child) {
				continue
			}
			out[keyStr] = child
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			out[i] = Canonicalize(val.Index(i).Interface(), pruneEmpty)
		}
		return out
	}

	if reflectutil.IsNumber(val) {
		f, _ := reflectutil.ToFloat64(val)
		return f
	}
	return val.Interface()
}

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// Equal reports whether two canonical values are structurally equal.
// Key order within mappings is irrelevant; nil and empty collections match.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, equalOpts...)
}

// Diff renders the difference between two canonical values, "-a +b".
// It returns "" when they are equal.
func Diff(a, b any) string {
	return cmp.Diff(a, b, equalOpts...)
}
