package ports

import (
	"context"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

// DesiredStateSource supplies the declared items of each resource type.
// declared is false when the source does not mention the type at all; such
// types are skipped rather than treated as empty.
//
//go:generate mockery --name DesiredStateSource --output ./mocks --outpkg mocks --case underscore
type DesiredStateSource interface {
	Type() string
	Load(ctx context.Context, rt domain.ResourceType) (items []domain.DesiredItem, declared bool, err error)
}
