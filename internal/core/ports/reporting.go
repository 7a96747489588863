package ports

import (
	"context"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

type Reporter interface {
	Report(ctx context.Context, results []domain.ReconciliationResult) error
}
