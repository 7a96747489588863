package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olusolaa/tenant-reconciler/internal/core/diff"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/executor"
	"github.com/olusolaa/tenant-reconciler/internal/core/fetch"
	"github.com/olusolaa/tenant-reconciler/internal/core/normalize"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/core/validation"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

// Reconciler drives one resource type through
// validating -> fetching -> diffing -> (reporting | applying) -> done.
// Every failure is recorded in the returned result; Reconcile itself never
// fails so that other resource types keep going.
type Reconciler struct {
	validator *validation.Validator
	fetcher   *fetch.Fetcher
	executor  *executor.Executor
	policy    ports.Policy
	logger    ports.Logger
}

func NewReconciler(
	validator *validation.Validator,
	fetcher *fetch.Fetcher,
	exec *executor.Executor,
	policy ports.Policy,
	logger ports.Logger,
) *Reconciler {
	return &Reconciler{
		validator: validator,
		fetcher:   fetcher,
		executor:  exec,
		policy:    policy,
		logger:    logger,
	}
}

type pipeline struct {
	cfg    domain.ResourceConfig
	api    ports.ResourceAPI
	result domain.ReconciliationResult
	logger ports.Logger
}

func (p *pipeline) enter(ctx context.Context, phase domain.Phase) {
	p.result.Phase = phase
	p.logger.Debugf(ctx, "Entering phase %s", phase)
}

func (p *pipeline) fail(ctx context.Context, errs ...error) domain.ReconciliationResult {
	p.result.FailedIn = p.result.Phase
	p.result.Phase = domain.PhaseFailed
	p.result.Status = domain.StatusFailed
	p.result.Errors = append(p.result.Errors, errs...)
	p.logger.Errorf(ctx, p.result.Err(), "Reconciliation of %s failed while %s", p.cfg.Type, p.result.FailedIn)
	return p.result
}

func (p *pipeline) finish(status domain.Status) domain.ReconciliationResult {
	p.result.Phase = domain.PhaseDone
	p.result.Status = status
	return p.result
}

// Reconcile brings the remote collection of cfg.Type in line with desired.
func (r *Reconciler) Reconcile(ctx context.Context, cfg domain.ResourceConfig, api ports.ResourceAPI, desired []domain.DesiredItem) (result domain.ReconciliationResult) {
	start := time.Now()
	p := &pipeline{
		cfg:    cfg,
		api:    api,
		logger: r.logger.WithFields(map[string]any{"resource_type": cfg.Type}),
		result: domain.ReconciliationResult{
			Type:   cfg.Type,
			DryRun: ports.PolicyBool(r.policy, domain.PolicyDryRun),
		},
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	p.enter(ctx, domain.PhaseValidating)
	if err := r.validator.Validate(desired, cfg); err != nil {
		return p.fail(ctx, err)
	}

	p.enter(ctx, domain.PhaseFetching)
	fetched, err := r.fetcher.FetchAll(ctx, cfg, api)
	if err != nil {
		return p.fail(ctx, err)
	}
	if fetched.Absent {
		p.logger.Infof(ctx, "Skipping %s: not supported by the backend for this tenant", cfg.Type)
		return p.finish(domain.StatusUnsupported)
	}

	p.enter(ctx, domain.PhaseDiffing)
	if cfg.Shape != nil {
		desired = cfg.Shape(domain.ShapeInput{
			Desired:  desired,
			Existing: fetched.Items,
			Toggle:   func(key string) bool { return ports.PolicyBool(r.policy, key) },
		})
	}
	if len(desired) == 0 && len(fetched.Items) == 0 {
		return p.finish(domain.StatusUnchanged)
	}

	cs, err := diff.Compute(desired, fetched.Items, cfg)
	if err != nil {
		return p.fail(ctx, errors.WrapAs(err, errors.CodeValidation, fmt.Sprintf("failed to classify %s", cfg.Type)))
	}
	if len(cs.Conflict) > 0 {
		return p.fail(ctx, conflictError(cs))
	}

	allowDelete := ports.PolicyBool(r.policy, domain.PolicyAllowDelete)
	p.result.Planned = cs.Counts()
	if !allowDelete {
		p.result.SkippedDeletes = len(cs.Delete)
	}
	r.logPlan(ctx, p, cs, allowDelete)

	if cs.IsEmpty() {
		return p.finish(domain.StatusUnchanged)
	}

	if p.result.DryRun {
		p.enter(ctx, domain.PhaseReporting)
		return p.finish(domain.StatusPlanned)
	}

	p.enter(ctx, domain.PhaseApplying)
	if allowDelete {
		n, errs := r.applyDeletes(ctx, p, cs.Delete)
		p.result.Deleted = n
		if len(errs) > 0 {
			return p.fail(ctx, errs...)
		}
	} else if len(cs.Delete) > 0 {
		p.logger.Warnf(ctx, "Leaving %d %s item(s) in place, deletes are not allowed", len(cs.Delete), cfg.Type)
	}

	n, errs := r.applyUpdates(ctx, p, cs.Update)
	p.result.Updated = n
	if len(errs) > 0 {
		return p.fail(ctx, errs...)
	}

	n, errs = r.applyCreates(ctx, p, cs.Create)
	p.result.Created = n
	if len(errs) > 0 {
		return p.fail(ctx, errs...)
	}

	p.logger.Infof(ctx, "Applied %s changes: %d created, %d updated, %d deleted",
		cfg.Type, p.result.Created, p.result.Updated, p.result.Deleted)
	return p.finish(domain.StatusApplied)
}

func (r *Reconciler) logPlan(ctx context.Context, p *pipeline, cs domain.ChangeSet, allowDelete bool) {
	c := cs.Counts()
	p.logger.Infof(ctx, "Planned %s changes: %d create, %d update, %d delete (deletes allowed: %t)",
		p.cfg.Type, c.Create, c.Update, c.Delete, allowDelete)
	for _, u := range cs.Update {
		p.logger.Debugf(ctx, "Update %s (-existing +desired):\n%s", u.Key, diff.Explain(u, p.cfg))
	}
}

func (r *Reconciler) applyDeletes(ctx context.Context, p *pipeline, items []domain.ExistingItem) (int, []error) {
	out := executor.Run(ctx, r.executor, items, func(ctx context.Context, ex domain.ExistingItem) (struct{}, error) {
		if err := p.api.Delete(ctx, ex.ID); err != nil {
			return struct{}{}, mutationError(err, "delete", p.cfg.Type, ex.Key.String(), ex.ID)
		}
		return struct{}{}, nil
	})
	return settled(out)
}

func (r *Reconciler) applyUpdates(ctx context.Context, p *pipeline, updates []domain.Update) (int, []error) {
	out := executor.Run(ctx, r.executor, updates, func(ctx context.Context, u domain.Update) (domain.Payload, error) {
		body := normalize.UpdatePayload(u.Desired, p.cfg)
		res, err := p.api.Update(ctx, u.ID, body)
		if err != nil {
			return nil, mutationError(err, "update", p.cfg.Type, u.Key.String(), u.ID)
		}
		return res, nil
	})
	return settled(out)
}

func (r *Reconciler) applyCreates(ctx context.Context, p *pipeline, items []domain.DesiredItem) (int, []error) {
	out := executor.Run(ctx, r.executor, items, func(ctx context.Context, d domain.DesiredItem) (domain.Payload, error) {
		res, err := p.api.Create(ctx, normalize.CreatePayload(d.Payload, p.cfg))
		if err != nil {
			key, _ := normalize.IdentityOf(d.Payload, p.cfg)
			return nil, mutationError(err, "create", p.cfg.Type, key.String(), "")
		}
		return res, nil
	})
	return settled(out)
}

func settled[T, R any](out []executor.Outcome[T, R]) (int, []error) {
	errs := executor.Errors(out)
	return len(out) - len(errs), errs
}

func mutationError(err error, op string, rt domain.ResourceType, key, id string) error {
	target := key
	if id != "" && id != key {
		target = fmt.Sprintf("%s (%s)", key, id)
	}
	if target == "" {
		target = string(rt)
	}
	return errors.WrapAs(err, errors.CodeMutationError, fmt.Sprintf("failed to %s %s %s", op, rt, target))
}

func conflictError(cs domain.ChangeSet) error {
	verr := &errors.ValidationError{ResourceType: string(cs.Type)}
	for _, c := range cs.Conflict {
		verr.DuplicateKeys = append(verr.DuplicateKeys, c.Key.String())
	}
	return errors.WrapAs(verr, errors.CodeValidation, verr.Error())
}
