package ports

import (
	"context"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

// PageRequest carries the opaque continuation token of a paged list.
// The zero value requests the first page.
type PageRequest struct {
	Token string
}

// Page is one page of a list call. An empty Next means no further pages.
type Page struct {
	Items []domain.Payload
	Next  string
}

// ResourceAPI is the remote API bound to one resource type. Errors are
// reported as *errors.APIError when the backend answered with a non-2xx status.
//
//go:generate mockery --name ResourceAPI --output ./mocks --outpkg mocks --case underscore
type ResourceAPI interface {
	List(ctx context.Context, req PageRequest) (Page, error)
	Create(ctx context.Context, payload domain.Payload) (domain.Payload, error)
	Update(ctx context.Context, id string, payload domain.Payload) (domain.Payload, error)
	Delete(ctx context.Context, id string) error
}

// RemoteClient binds resource configurations to ResourceAPIs.
type RemoteClient interface {
	Bind(cfg domain.ResourceConfig) ResourceAPI
}
