// Package normalize extracts identity keys from configuration items and
// strips the fields that must never take part in a comparison.
package normalize

import (
	"fmt"
	"strings"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/pkg/compare"
)

// MissingIdentityError is returned when an item lacks one of its identity fields.
type MissingIdentityError struct {
	Type   domain.ResourceType
	Field  string
	Origin string
}

func (e *MissingIdentityError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("%s item from %s is missing identity field %q", e.Type, e.Origin, e.Field)
	}
	return fmt.Sprintf("%s item is missing identity field %q", e.Type, e.Field)
}

// IdentityOf extracts the configured identity key of an item.
func IdentityOf(p domain.Payload, cfg domain.ResourceConfig) (domain.Key, error) {
	paths := cfg.IdentityPaths()
	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		v, ok := GetPath(p, path)
		s := identityString(v)
		if !ok || s == "" {
			return "", &MissingIdentityError{Type: cfg.Type, Field: path}
		}
		parts = append(parts, s)
	}
	return domain.CompositeKey(parts...), nil
}

func identityString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// RemoteID returns the remote identifier of a fetched item, or "".
func RemoteID(p domain.Payload, cfg domain.ResourceConfig) string {
	v, ok := GetPath(p, cfg.IDPath())
	if !ok {
		return ""
	}
	return identityString(v)
}

// Normalize returns the comparable form of an item: server-computed,
// create-only and secret fields removed, numbers canonical, and, unless the
// configuration asks for strict nulls, empty values pruned.
func Normalize(p domain.Payload, cfg domain.ResourceConfig) map[string]any {
	stripped := strip(p, cfg.ServerFields, cfg.CreateOnlyFields, cfg.SecretFields)
	out, _ := compare.Canonicalize(map[string]any(stripped), !cfg.StrictNull).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// ComparablePair normalizes a desired and an existing payload for equality
// checks. With patch updates only the fields named by the desired payload
// are compared, since the others are never touched by an update. Nested
// objects are projected the same way; lists are compared whole.
func ComparablePair(desired, existing domain.Payload, cfg domain.ResourceConfig) (map[string]any, map[string]any) {
	if cfg.PatchUpdates {
		existing = domain.Payload(projectMap(desired, existing))
	}
	return Normalize(desired, cfg), Normalize(existing, cfg)
}

// projectMap keeps the keys of existing that desired also names.
func projectMap(desired, existing map[string]any) map[string]any {
	out := make(map[string]any, len(desired))
	for k, dv := range desired {
		ev, ok := existing[k]
		if !ok {
			continue
		}
		out[k] = project(dv, ev)
	}
	return out
}

func project(desired, existing any) any {
	dm, dok := asMap(desired)
	em, eok := asMap(existing)
	if !dok || !eok {
		return existing
	}
	return projectMap(dm, em)
}

// CreatePayload is the body sent on create: the desired payload without
// server-computed fields.
func CreatePayload(p domain.Payload, cfg domain.ResourceConfig) domain.Payload {
	return strip(p, cfg.ServerFields)
}

// UpdatePayload is the body sent on update. Create-only fields are removed
// since the backend rejects them after creation.
func UpdatePayload(p domain.Payload, cfg domain.ResourceConfig) domain.Payload {
	return strip(p, cfg.ServerFields, cfg.CreateOnlyFields)
}

func strip(p domain.Payload, fieldSets ...[]string) domain.Payload {
	out := p.Clone()
	if out == nil {
		out = domain.Payload{}
	}
	for _, fields := range fieldSets {
		for _, f := range fields {
			DeletePath(out, f)
		}
	}
	return out
}
