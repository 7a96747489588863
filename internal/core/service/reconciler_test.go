package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/executor"
	"github.com/olusolaa/tenant-reconciler/internal/core/fetch"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	portsmocks "github.com/olusolaa/tenant-reconciler/internal/core/ports/mocks"
	"github.com/olusolaa/tenant-reconciler/internal/core/validation"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

type mapPolicy map[string]any

func (m mapPolicy) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

var rolesCfg = domain.ResourceConfig{
	Type:         domain.TypeRoles,
	ServerFields: []string{"id"},
	Endpoint:     domain.Endpoint{Path: "/roles", Paging: domain.PagingPage, ListKey: "roles"},
}

func newReconciler(t *testing.T, policy mapPolicy) *Reconciler {
	logger := portsmocks.NewQuietLogger(t)
	return NewReconciler(
		validation.New(),
		fetch.NewFetcher(fetch.DefaultAbsencePolicy(), logger),
		executor.New(executor.Config{MaxConcurrent: 2, Limit: 1000, Window: time.Second}, logger),
		policy,
		logger,
	)
}

func desiredItems(payloads ...domain.Payload) []domain.DesiredItem {
	out := make([]domain.DesiredItem, len(payloads))
	for i, p := range payloads {
		out[i] = domain.DesiredItem{Payload: p}
	}
	return out
}

func listReturns(api *portsmocks.ResourceAPI, items ...domain.Payload) {
	api.On("List", mock.Anything, ports.PageRequest{}).Return(ports.Page{Items: items}, nil).Once()
}

func TestReconcile_UpdatesChangedItem(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	listReturns(api, domain.Payload{"id": "r1", "name": "X", "value": 2})
	api.On("Update", mock.Anything, "r1", domain.Payload{"name": "X", "value": 1}).
		Return(domain.Payload{"id": "r1", "name": "X", "value": 1}, nil).Once()

	res := newReconciler(t, nil).Reconcile(context.Background(), rolesCfg, api,
		desiredItems(domain.Payload{"name": "X", "value": 1}))

	assert.Equal(t, domain.StatusApplied, res.Status)
	assert.Equal(t, domain.PhaseDone, res.Phase)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, domain.Counts{Update: 1}, res.Planned)
	assert.Empty(t, res.Errors)
}

func TestReconcile_CreatesMissingItem(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	listReturns(api)
	api.On("Create", mock.Anything, domain.Payload{"name": "X"}).
		Return(domain.Payload{"id": "r9", "name": "X"}, nil).Once()

	res := newReconciler(t, nil).Reconcile(context.Background(), rolesCfg, api,
		desiredItems(domain.Payload{"name": "X"}))

	assert.Equal(t, domain.StatusApplied, res.Status)
	assert.Equal(t, 1, res.Created)
}

func TestReconcile_DeleteGating(t *testing.T) {
	t.Run("deletes not allowed", func(t *testing.T) {
		api := portsmocks.NewResourceAPI(t)
		listReturns(api, domain.Payload{"id": "r1", "name": "X"})

		res := newReconciler(t, mapPolicy{domain.PolicyAllowDelete: false}).
			Reconcile(context.Background(), rolesCfg, api, desiredItems())

		api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Equal(t, 0, res.Deleted)
		assert.Equal(t, 1, res.SkippedDeletes)
		assert.Equal(t, 1, res.Planned.Delete)
		assert.False(t, res.Failed())
	})

	t.Run("deletes allowed", func(t *testing.T) {
		api := portsmocks.NewResourceAPI(t)
		listReturns(api, domain.Payload{"id": "r1", "name": "X"})
		api.On("Delete", mock.Anything, "r1").Return(nil).Once()

		res := newReconciler(t, mapPolicy{domain.PolicyAllowDelete: "true"}).
			Reconcile(context.Background(), rolesCfg, api, desiredItems())

		assert.Equal(t, 1, res.Deleted)
		assert.Equal(t, 0, res.SkippedDeletes)
		assert.Equal(t, domain.StatusApplied, res.Status)
	})
}

func TestReconcile_DryRunMakesNoMutatingCalls(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	listReturns(api,
		domain.Payload{"id": "r1", "name": "keep", "value": 2},
		domain.Payload{"id": "r2", "name": "gone"},
	)

	res := newReconciler(t, mapPolicy{domain.PolicyDryRun: true, domain.PolicyAllowDelete: true}).
		Reconcile(context.Background(), rolesCfg, api, desiredItems(
			domain.Payload{"name": "keep", "value": 1},
			domain.Payload{"name": "new"},
		))

	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.True(t, res.DryRun)
	assert.Equal(t, domain.StatusPlanned, res.Status)
	assert.Equal(t, domain.Counts{Create: 1, Update: 1, Delete: 1}, res.Planned)
	assert.Zero(t, res.Created+res.Updated+res.Deleted)
}

func TestReconcile_AbsentResourceType(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	api.On("List", mock.Anything, ports.PageRequest{}).
		Return(ports.Page{}, &apperrors.APIError{StatusCode: 403, ErrorCode: "feature_not_enabled"}).Once()

	res := newReconciler(t, mapPolicy{domain.PolicyAllowDelete: true}).
		Reconcile(context.Background(), rolesCfg, api, desiredItems(domain.Payload{"name": "X"}))

	assert.Equal(t, domain.StatusUnsupported, res.Status)
	assert.False(t, res.Failed())
	assert.Empty(t, res.Errors)
	assert.Zero(t, res.Planned.Delete)
}

func TestReconcile_ValidationFailsBeforeFetch(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)

	res := newReconciler(t, nil).Reconcile(context.Background(), rolesCfg, api,
		desiredItems(domain.Payload{"name": "a"}, domain.Payload{"name": "a"}))

	api.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, domain.PhaseValidating, res.FailedIn)
	require.Len(t, res.Errors, 1)
	assert.True(t, apperrors.Is(res.Errors[0], apperrors.CodeValidation))
	assert.Contains(t, res.Err().Error(), "names must be unique")
}

func TestReconcile_FetchFailure(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	api.On("List", mock.Anything, ports.PageRequest{}).
		Return(ports.Page{}, &apperrors.APIError{StatusCode: 500}).Once()

	res := newReconciler(t, nil).Reconcile(context.Background(), rolesCfg, api,
		desiredItems(domain.Payload{"name": "X"}))

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, domain.PhaseFetching, res.FailedIn)
	assert.True(t, apperrors.Is(res.Err(), apperrors.CodeFetchError))
}

func TestReconcile_EmptyOnBothSides(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	listReturns(api)

	res := newReconciler(t, mapPolicy{domain.PolicyAllowDelete: true}).
		Reconcile(context.Background(), rolesCfg, api, desiredItems())

	assert.Equal(t, domain.StatusUnchanged, res.Status)
	assert.Equal(t, domain.Counts{}, res.Planned)
}

func TestReconcile_PartialFailureIsCounted(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	listReturns(api)
	api.On("Create", mock.Anything, domain.Payload{"name": "a"}).Return(domain.Payload{"id": "1"}, nil).Once()
	api.On("Create", mock.Anything, domain.Payload{"name": "b"}).
		Return(nil, &apperrors.APIError{StatusCode: 409, Message: "already exists"}).Once()
	api.On("Create", mock.Anything, domain.Payload{"name": "c"}).Return(domain.Payload{"id": "3"}, nil).Once()

	res := newReconciler(t, nil).Reconcile(context.Background(), rolesCfg, api,
		desiredItems(domain.Payload{"name": "a"}, domain.Payload{"name": "b"}, domain.Payload{"name": "c"}))

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, domain.PhaseApplying, res.FailedIn)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Errors, 1)
	assert.True(t, apperrors.Is(res.Errors[0], apperrors.CodeMutationError))
	assert.Contains(t, res.Errors[0].Error(), "failed to create roles b")
}

func TestReconcile_DeleteFailureStopsLaterClassifications(t *testing.T) {
	api := portsmocks.NewResourceAPI(t)
	listReturns(api,
		domain.Payload{"id": "r1", "name": "old"},
		domain.Payload{"id": "r2", "name": "X", "value": 2},
	)
	api.On("Delete", mock.Anything, "r1").Return(&apperrors.APIError{StatusCode: 500}).Once()

	res := newReconciler(t, mapPolicy{domain.PolicyAllowDelete: true}).
		Reconcile(context.Background(), rolesCfg, api, desiredItems(
			domain.Payload{"name": "X", "value": 1},
			domain.Payload{"name": "new"},
		))

	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Zero(t, res.Deleted)
}

func TestReconcile_AppliesDeleteThenUpdateThenCreate(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) {
			mu.Lock()
			calls = append(calls, name)
			mu.Unlock()
		}
	}

	api := portsmocks.NewResourceAPI(t)
	listReturns(api,
		domain.Payload{"id": "r1", "name": "old"},
		domain.Payload{"id": "r2", "name": "X", "value": 2},
	)
	api.On("Delete", mock.Anything, "r1").Run(record("delete")).Return(nil).Once()
	api.On("Update", mock.Anything, "r2", mock.Anything).Run(record("update")).Return(domain.Payload{}, nil).Once()
	api.On("Create", mock.Anything, mock.Anything).Run(record("create")).Return(domain.Payload{}, nil).Once()

	res := newReconciler(t, mapPolicy{domain.PolicyAllowDelete: true}).
		Reconcile(context.Background(), rolesCfg, api, desiredItems(
			domain.Payload{"name": "X", "value": 1},
			domain.Payload{"name": "new"},
		))

	assert.Equal(t, []string{"delete", "update", "create"}, calls)
	assert.Equal(t, domain.StatusApplied, res.Status)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Deleted)
}

func TestReconcile_ShapeHookSeesExistingAndToggles(t *testing.T) {
	cfg := domain.ResourceConfig{
		Type:      domain.TypeTenant,
		Singleton: true,
		Endpoint:  domain.Endpoint{Path: "/tenants/settings"},
		Shape: func(in domain.ShapeInput) []domain.DesiredItem {
			if !in.Toggle("strip_flags") {
				return in.Desired
			}
			p := in.Desired[0].Payload.Clone()
			delete(p, "flags")
			return []domain.DesiredItem{{Payload: p}}
		},
	}

	api := portsmocks.NewResourceAPI(t)
	listReturns(api, domain.Payload{"friendly_name": "Acme"})

	res := newReconciler(t, mapPolicy{"strip_flags": "true"}).Reconcile(context.Background(), cfg, api,
		desiredItems(domain.Payload{"friendly_name": "Acme", "flags": map[string]any{"beta": true}}))

	assert.Equal(t, domain.StatusUnchanged, res.Status)
}

func TestReconcile_SingletonUpdate(t *testing.T) {
	cfg := domain.ResourceConfig{Type: domain.TypeBranding, Singleton: true, Endpoint: domain.Endpoint{Path: "/branding"}}

	api := portsmocks.NewResourceAPI(t)
	listReturns(api, domain.Payload{"colors": map[string]any{"primary": "#000000"}})
	api.On("Update", mock.Anything, "", domain.Payload{"colors": map[string]any{"primary": "#ffffff"}}).
		Return(domain.Payload{}, nil).Once()

	res := newReconciler(t, nil).Reconcile(context.Background(), cfg, api,
		desiredItems(domain.Payload{"colors": map[string]any{"primary": "#ffffff"}}))

	assert.Equal(t, domain.StatusApplied, res.Status)
	assert.Equal(t, 1, res.Updated)
}

func TestReconcile_SingletonCreatedWhenAbsent(t *testing.T) {
	cfg := domain.ResourceConfig{
		Type:             domain.TypeEmailProvider,
		Singleton:        true,
		CreateWhenAbsent: true,
		SecretFields:     []string{"credentials"},
		Endpoint:         domain.Endpoint{Path: "/emails/provider"},
	}
	payload := domain.Payload{"name": "smtp", "credentials": map[string]any{"smtp_pass": "x"}}

	api := portsmocks.NewResourceAPI(t)
	api.On("List", mock.Anything, ports.PageRequest{}).
		Return(ports.Page{}, &apperrors.APIError{StatusCode: 404, Message: "No email provider"}).Once()
	api.On("Create", mock.Anything, payload).Return(domain.Payload{"name": "smtp"}, nil).Once()

	res := newReconciler(t, nil).Reconcile(context.Background(), cfg, api, desiredItems(payload))

	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.StatusApplied, res.Status)
	assert.Equal(t, domain.Counts{Create: 1}, res.Planned)
	assert.Equal(t, 1, res.Created)
}
