package ports

import (
	"context"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

//go:generate mockery --name ReconcileEngine --output ./mocks --outpkg mocks --case underscore
type ReconcileEngine interface {
	Run(ctx context.Context) ([]domain.ReconciliationResult, error)
}
