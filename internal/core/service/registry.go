package service

import (
	"fmt"
	"sync"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

// ComponentRegistry holds the desired-state sources and the resource
// configurations known to the application. Resource types keep their
// registration order, which is the default reconciliation order.
type ComponentRegistry struct {
	mu        sync.RWMutex
	sources   map[string]ports.DesiredStateSource
	resources map[domain.ResourceType]domain.ResourceConfig
	order     []domain.ResourceType
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		sources:   make(map[string]ports.DesiredStateSource),
		resources: make(map[domain.ResourceType]domain.ResourceConfig),
	}
}

func (r *ComponentRegistry) RegisterSource(source ports.DesiredStateSource) error {
	if source == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil desired state source")
	}
	sourceType := source.Type()
	if sourceType == "" {
		return errors.New(errors.CodeInternal, "desired state source type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[sourceType]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("desired state source type '%s' already registered", sourceType))
	}
	r.sources[sourceType] = source
	return nil
}

func (r *ComponentRegistry) GetSource(sourceType string) (ports.DesiredStateSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[sourceType]
	if !exists {
		return nil, errors.New(errors.CodeConfigValidation, fmt.Sprintf("desired state source type '%s' not found", sourceType))
	}
	return source, nil
}

func (r *ComponentRegistry) RegisterResource(cfg domain.ResourceConfig) error {
	if cfg.Type == "" {
		return errors.New(errors.CodeInternal, "resource type cannot be empty")
	}
	if !cfg.Singleton && cfg.Endpoint.Path == "" {
		return errors.New(errors.CodeInternal, fmt.Sprintf("resource type '%s' has no endpoint path", cfg.Type))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[cfg.Type]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("resource type '%s' already registered", cfg.Type))
	}
	r.resources[cfg.Type] = cfg
	r.order = append(r.order, cfg.Type)
	return nil
}

func (r *ComponentRegistry) GetResource(rt domain.ResourceType) (domain.ResourceConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.resources[rt]
	if !exists {
		return domain.ResourceConfig{}, errors.NewUserFacing(errors.CodeNotImplemented,
			fmt.Sprintf("resource type '%s' is not supported", rt),
			fmt.Sprintf("Supported types: %v", r.order))
	}
	return cfg, nil
}

// ResourceTypes lists the registered types in registration order.
func (r *ComponentRegistry) ResourceTypes() []domain.ResourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ResourceType, len(r.order))
	copy(out, r.order)
	return out
}
