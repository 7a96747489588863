package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

// ReconcileEngine runs the per-type reconciliation for every configured
// resource type and hands the results to the reporter.
type ReconcileEngine struct {
	registry    *ComponentRegistry
	source      ports.DesiredStateSource
	client      ports.RemoteClient
	reconciler  *Reconciler
	reporter    ports.Reporter
	logger      ports.Logger
	types       []domain.ResourceType
	concurrency int
}

func NewReconcileEngine(
	registry *ComponentRegistry,
	source ports.DesiredStateSource,
	client ports.RemoteClient,
	reconciler *Reconciler,
	reporter ports.Reporter,
	logger ports.Logger,
	types []domain.ResourceType,
	concurrency int,
) (*ReconcileEngine, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	if source == nil {
		return nil, errors.New(errors.CodeConfigValidation, "desired state source cannot be nil")
	}
	if client == nil {
		return nil, errors.New(errors.CodeConfigValidation, "remote client cannot be nil")
	}
	if len(types) == 0 {
		types = registry.ResourceTypes()
	}
	for _, rt := range types {
		if _, err := registry.GetResource(rt); err != nil {
			return nil, err
		}
	}

	return &ReconcileEngine{
		registry:    registry,
		source:      source,
		client:      client,
		reconciler:  reconciler,
		reporter:    reporter,
		logger:      logger,
		types:       types,
		concurrency: concurrency,
	}, nil
}

// Run reconciles each resource type independently. A failing type never
// stops the others; the returned error is non-nil when any type failed or
// the report could not be produced.
func (e *ReconcileEngine) Run(ctx context.Context) ([]domain.ReconciliationResult, error) {
	runID := uuid.NewString()
	log := e.logger.WithFields(map[string]any{"run_id": runID})
	log.Infof(ctx, "Starting reconciliation of %d resource type(s) from %s source", len(e.types), e.source.Type())

	results := make([]domain.ReconciliationResult, len(e.types))
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, rt := range e.types {
		g.Go(func() error {
			results[i] = e.reconcileType(ctx, log, rt)
			return nil
		})
	}
	_ = g.Wait()

	if e.reporter != nil {
		if err := e.reporter.Report(ctx, results); err != nil {
			return results, errors.Wrap(err, errors.CodeInternal, "failed to generate final report")
		}
	}

	var failed []string
	for _, res := range results {
		if res.Failed() {
			failed = append(failed, string(res.Type))
		}
	}
	if len(failed) > 0 {
		err := errors.NewUserFacing(errors.CodeReconcileFailed,
			fmt.Sprintf("reconciliation failed for %d resource type(s): %s", len(failed), strings.Join(failed, ", ")),
			"Review the errors reported for each resource type.")
		log.Errorf(ctx, err, "Reconciliation run finished with failures")
		return results, err
	}

	log.Infof(ctx, "Reconciliation run finished successfully")
	return results, nil
}

func (e *ReconcileEngine) reconcileType(ctx context.Context, log ports.Logger, rt domain.ResourceType) domain.ReconciliationResult {
	typeLog := log.WithFields(map[string]any{"resource_type": rt})

	cfg, err := e.registry.GetResource(rt)
	if err != nil {
		return domain.ReconciliationResult{
			Type: rt, Status: domain.StatusFailed, Phase: domain.PhaseFailed,
			FailedIn: domain.PhaseValidating, Errors: []error{err},
		}
	}

	desired, declared, err := e.source.Load(ctx, rt)
	if err != nil {
		typeLog.Errorf(ctx, err, "Failed to load desired state")
		return domain.ReconciliationResult{
			Type: rt, Status: domain.StatusFailed, Phase: domain.PhaseFailed,
			FailedIn: domain.PhaseValidating, Errors: []error{err},
		}
	}
	if !declared {
		typeLog.Infof(ctx, "No %s declared in the desired state, skipping", rt)
		return domain.ReconciliationResult{Type: rt, Status: domain.StatusSkipped, Phase: domain.PhaseDone}
	}

	typeLog.Debugf(ctx, "Loaded %d desired %s item(s)", len(desired), rt)
	return e.reconciler.Reconcile(ctx, cfg, e.client.Bind(cfg), desired)
}
