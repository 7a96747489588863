package domain

import "strings"

// Payload is the free-form field set of one configuration object.
type Payload map[string]any

// Clone returns a deep copy of p. Nested maps and slices are copied, scalars
// are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return cloneValue(map[string]any(p)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Payload:
		return Payload(cloneValue(map[string]any(t)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Key is the identity of an item within one resource type.
type Key string

// KeySeparator joins the parts of a composite identity key.
const KeySeparator = "::"

func CompositeKey(parts ...string) Key {
	return Key(strings.Join(parts, KeySeparator))
}

func (k Key) String() string {
	return string(k)
}

// DesiredItem is one entry of the declared configuration.
type DesiredItem struct {
	Payload Payload
	// Origin names where the item was declared (file, object key), for messages.
	Origin string
}

// ExistingItem is one entry fetched from the remote API. ID is the
// remote-assigned identifier used for update and delete calls; Key is filled
// in once the identity has been resolved.
type ExistingItem struct {
	ID      string
	Key     Key
	Payload Payload
}
