package normalize

import (
	"strings"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

// GetPath resolves a dotted path inside nested mappings.
func GetPath(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		node, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// DeletePath removes the field at a dotted path. When an intermediate value
// is a list, the remainder of the path is removed from every mapping in it,
// so "secrets.value" strips the value of each secret.
func DeletePath(m map[string]any, path string) {
	deleteParts(m, strings.Split(path, "."))
}

func deleteParts(v any, parts []string) {
	switch node := v.(type) {
	case []any:
		for _, elem := range node {
			deleteParts(elem, parts)
		}
	default:
		m, ok := asMap(node)
		if !ok {
			return
		}
		if len(parts) == 1 {
			delete(m, parts[0])
			return
		}
		if child, ok := m[parts[0]]; ok {
			deleteParts(child, parts[1:])
		}
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case domain.Payload:
		return t, true
	default:
		return nil, false
	}
}
