package domain

import (
	"errors"
	"time"
)

type Status string

const (
	StatusUnchanged   Status = "UNCHANGED"
	StatusApplied     Status = "APPLIED"
	StatusPlanned     Status = "PLANNED"
	StatusSkipped     Status = "SKIPPED"
	StatusUnsupported Status = "UNSUPPORTED"
	StatusFailed      Status = "FAILED"
)

// Phase is a state of the per-type reconciliation pipeline.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseFetching   Phase = "fetching"
	PhaseDiffing    Phase = "diffing"
	PhaseReporting  Phase = "reporting"
	PhaseApplying   Phase = "applying"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// ReconciliationResult is scoped to one resource type and one run.
type ReconciliationResult struct {
	Type   ResourceType
	Status Status
	Phase  Phase
	// FailedIn is the phase that was active when the pipeline failed.
	FailedIn Phase
	DryRun   bool
	Planned  Counts

	Created int
	Updated int
	Deleted int
	// SkippedDeletes counts delete classifications dropped by the delete policy.
	SkippedDeletes int

	Errors   []error
	Duration time.Duration
}

func (r ReconciliationResult) Failed() bool {
	return r.Status == StatusFailed
}

// Err joins every error recorded for the resource type.
func (r ReconciliationResult) Err() error {
	return errors.Join(r.Errors...)
}
