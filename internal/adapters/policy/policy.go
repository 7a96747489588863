// Package policy provides the operator policy lookups consulted during
// reconciliation: allow_delete, dry_run and resource feature toggles.
package policy

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
)

// PolicyPrefix is the configuration section holding policy keys.
const PolicyPrefix = "policy"

// Viper looks keys up under the policy section of a viper instance, so
// values from the config file, RECONCILE_POLICY_* variables and bound flags
// all apply.
type Viper struct {
	v *viper.Viper
}

func NewViper(v *viper.Viper) *Viper {
	return &Viper{v: v}
}

func (p *Viper) Lookup(key string) (any, bool) {
	full := PolicyPrefix + "." + strings.ToLower(key)
	if !p.v.IsSet(full) {
		return nil, false
	}
	return p.v.Get(full), true
}

func (p *Viper) Bool(key string) bool {
	return ports.PolicyBool(p, key)
}

func (p *Viper) String(key string) string {
	return ports.PolicyString(p, key)
}

// Static is a fixed set of policy values. Placed last in a Layered policy
// it supplies defaults.
type Static map[string]any

func (s Static) Lookup(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

func (s Static) Bool(key string) bool {
	return ports.PolicyBool(s, key)
}

func (s Static) String(key string) string {
	return ports.PolicyString(s, key)
}

// Layered consults each policy in order and returns the first hit.
type Layered []ports.Policy

func (l Layered) Lookup(key string) (any, bool) {
	for _, p := range l {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(key); ok {
			return v, true
		}
	}
	return nil, false
}
