package ports

import "github.com/spf13/cast"

// Policy is a key lookup for operator toggles. Absent keys are falsy.
//
//go:generate mockery --name Policy --output ./mocks --outpkg mocks --case underscore
type Policy interface {
	Lookup(key string) (any, bool)
}

// PolicyBool interprets a policy value as a boolean. Absent or
// unparseable values are false.
func PolicyBool(p Policy, key string) bool {
	if p == nil {
		return false
	}
	v, ok := p.Lookup(key)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

// PolicyString returns the string form of a policy value, or "".
func PolicyString(p Policy, key string) string {
	if p == nil {
		return ""
	}
	v, ok := p.Lookup(key)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}
