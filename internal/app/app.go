package app

import (
	"context"

	"github.com/olusolaa/tenant-reconciler/internal/config"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/executor"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
)

// Application represents the main application that runs the reconcile engine
type Application struct {
	Engine   ports.ReconcileEngine
	Logger   ports.Logger
	Config   *config.Config
	Executor *executor.Executor
}

func NewApplication(engine ports.ReconcileEngine, logger ports.Logger) *Application {
	return &Application{
		Engine: engine,
		Logger: logger,
	}
}

// Run executes one reconciliation pass over all configured resource types.
func (a *Application) Run(ctx context.Context) ([]domain.ReconciliationResult, error) {
	a.Logger.Infof(ctx, "Starting reconciliation...")

	results, err := a.Engine.Run(ctx)
	if a.Executor != nil {
		a.Logger.Debugf(ctx, "Peak concurrent mutations: %d", a.Executor.PeakInFlight())
	}
	if err != nil {
		a.Logger.Errorf(ctx, err, "Reconciliation failed")
		return results, err
	}

	a.Logger.Infof(ctx, "Reconciliation completed successfully")
	return results, nil
}
