// Package fetch retrieves the complete remote collection of a resource type.
package fetch

import (
	"context"
	"fmt"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/normalize"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

const defaultMaxPages = 1000

// Result is either the fetched items or, with Absent set, the marker that
// the backend does not offer this resource kind.
type Result struct {
	Items  []domain.ExistingItem
	Absent bool
}

type Fetcher struct {
	absence  AbsencePolicy
	maxPages int
	logger   ports.Logger
}

type Option func(*Fetcher)

// WithMaxPages bounds the number of pages followed before giving up.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

func NewFetcher(absence AbsencePolicy, logger ports.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		absence:  absence,
		maxPages: defaultMaxPages,
		logger:   logger.WithFields(map[string]any{"component": "fetcher"}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll follows pagination until the backend reports no further pages,
// keeping the order received and dropping repeated remote identifiers.
func (f *Fetcher) FetchAll(ctx context.Context, cfg domain.ResourceConfig, api ports.ResourceAPI) (Result, error) {
	log := f.logger.WithFields(map[string]any{"resource_type": cfg.Type})

	var items []domain.ExistingItem
	seenIDs := make(map[string]bool)
	seenTokens := make(map[string]bool)
	req := ports.PageRequest{}

	for pageNum := 1; ; pageNum++ {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		log.Debugf(ctx, "Fetching page %d", pageNum)
		page, err := api.List(ctx, req)
		if err != nil {
			if cfg.Singleton && cfg.CreateWhenAbsent && f.absence.IsNotFound(err) {
				log.Infof(ctx, "No %s configured yet", cfg.Type)
				return Result{}, nil
			}
			if f.absence.IsAbsent(err) {
				log.Infof(ctx, "Resource type %s is not available for this tenant, treating as absent", cfg.Type)
				return Result{Absent: true}, nil
			}
			return Result{}, errors.WrapAs(err, errors.CodeFetchError,
				fmt.Sprintf("failed to list %s (page %d)", cfg.Type, pageNum))
		}

		for _, p := range page.Items {
			id := normalize.RemoteID(p, cfg)
			if id != "" {
				if seenIDs[id] {
					log.Debugf(ctx, "Skipping duplicate item %s returned across pages", id)
					continue
				}
				seenIDs[id] = true
			}
			items = append(items, domain.ExistingItem{ID: id, Payload: p})
		}

		if page.Next == "" {
			break
		}
		if seenTokens[page.Next] {
			return Result{}, errors.New(errors.CodeFetchError,
				fmt.Sprintf("pagination of %s did not advance (token %q repeated)", cfg.Type, page.Next))
		}
		if pageNum >= f.maxPages {
			return Result{}, errors.New(errors.CodeFetchError,
				fmt.Sprintf("pagination of %s exceeded %d pages", cfg.Type, f.maxPages))
		}
		seenTokens[page.Next] = true
		req = ports.PageRequest{Token: page.Next}
	}

	log.Debugf(ctx, "Fetched %d existing %s items", len(items), cfg.Type)
	return Result{Items: items}, nil
}
