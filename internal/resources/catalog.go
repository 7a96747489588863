// Package resources holds the configuration of every resource type the
// reconciler manages. Each entry turns the generic engine into a handler for
// one remote collection or settings object.
package resources

import (
	"fmt"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

// Registrar accepts resource configurations. *service.ComponentRegistry
// satisfies it.
type Registrar interface {
	RegisterResource(cfg domain.ResourceConfig) error
}

// All returns the catalog in its default reconciliation order. Settings
// objects come first, then collections that others may reference.
func All() []domain.ResourceConfig {
	return []domain.ResourceConfig{
		Tenant(),
		Branding(),
		Prompts(),
		EmailProvider(),
		LogStreams(),
		Roles(),
		ResourceServers(),
		Clients(),
		Actions(),
	}
}

// Register adds every catalog entry to reg.
func Register(reg Registrar) error {
	for _, cfg := range All() {
		if err := reg.RegisterResource(cfg); err != nil {
			return fmt.Errorf("registering %s: %w", cfg.Type, err)
		}
	}
	return nil
}

func schemaOf[T any]() func() any {
	return func() any { return new(T) }
}
