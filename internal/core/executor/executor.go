// Package executor dispatches mutating calls under a shared concurrency
// limit and a sliding start-rate window.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
)

const (
	DefaultMaxConcurrent = 5
	DefaultLimit         = 15
	DefaultWindow        = time.Second
)

// Config is the mapstructure target of the "executor" config section.
type Config struct {
	MaxConcurrent int           `mapstructure:"max_concurrency" validate:"gte=0"`
	Limit         int           `mapstructure:"frequency_limit" validate:"gte=0"`
	Window        time.Duration `mapstructure:"frequency_window" validate:"gte=0"`
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

// Executor is safe to share between resource types reconciled in parallel;
// both limits then apply to the sum of their calls.
type Executor struct {
	cfg      Config
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	inFlight atomic.Int64
	peak     atomic.Int64
	logger   ports.Logger
}

// New builds an executor that keeps at most MaxConcurrent operations in
// flight and starts at most Limit operations in any Window. Starts are
// spaced Window/Limit apart (burst of one), which keeps the bound on every
// sliding window and not only on aligned ones.
func New(cfg Config, logger ports.Logger) *Executor {
	cfg = cfg.withDefaults()
	return &Executor{
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		limiter: rate.NewLimiter(rate.Every(cfg.Window/time.Duration(cfg.Limit)), 1),
		logger:  logger.WithFields(map[string]any{"component": "executor"}),
	}
}

func (e *Executor) Config() Config {
	return e.cfg
}

// InFlight is the number of operations currently executing.
func (e *Executor) InFlight() int64 {
	return e.inFlight.Load()
}

// PeakInFlight is the highest InFlight value observed.
func (e *Executor) PeakInFlight() int64 {
	return e.peak.Load()
}

// Outcome is the result of running an operation on one item.
type Outcome[T, R any] struct {
	Item   T
	Result R
	Err    error
}

// Run applies op to every item and returns one outcome per item in input
// order. A failing item never aborts the others. Cancelling ctx stops new
// dispatches; operations already started finish on a detached context and
// items that were never started fail with the context error.
func Run[T, R any](ctx context.Context, e *Executor, items []T, op func(context.Context, T) (R, error)) []Outcome[T, R] {
	outcomes := make([]Outcome[T, R], len(items))
	detached := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, item := range items {
		outcomes[i].Item = item

		if err := e.sem.Acquire(ctx, 1); err != nil {
			markUndispatched(outcomes[i:], items[i:], err)
			break
		}
		if err := e.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				e.logger.Warnf(ctx, "Error waiting for operation rate limiter: %v", err)
			}
			e.sem.Release(1)
			markUndispatched(outcomes[i:], items[i:], err)
			break
		}

		e.track(e.inFlight.Add(1))
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer e.sem.Release(1)
			defer e.inFlight.Add(-1)

			res, err := op(detached, item)
			outcomes[i].Result = res
			outcomes[i].Err = err
		}(i, item)
	}
	wg.Wait()

	return outcomes
}

func (e *Executor) track(current int64) {
	for {
		peak := e.peak.Load()
		if current <= peak || e.peak.CompareAndSwap(peak, current) {
			return
		}
	}
}

func markUndispatched[T, R any](outcomes []Outcome[T, R], items []T, err error) {
	for i := range outcomes {
		outcomes[i].Item = items[i]
		outcomes[i].Err = err
	}
}

// Errors returns the non-nil errors of outcomes.
func Errors[T, R any](outcomes []Outcome[T, R]) []error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}
