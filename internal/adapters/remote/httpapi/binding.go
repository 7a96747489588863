package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

type binding struct {
	client *Client
	cfg    domain.ResourceConfig
}

func (b *binding) List(ctx context.Context, req ports.PageRequest) (ports.Page, error) {
	switch b.cfg.Endpoint.Paging {
	case domain.PagingPage:
		return b.listPage(ctx, req)
	case domain.PagingCheckpoint:
		return b.listCheckpoint(ctx, req)
	default:
		return b.listAll(ctx)
	}
}

// listAll handles unpaged endpoints. A singleton answers with one object,
// a collection with an array.
func (b *binding) listAll(ctx context.Context) (ports.Page, error) {
	var raw any
	if err := b.client.do(ctx, http.MethodGet, b.cfg.Endpoint.Path, nil, nil, &raw); err != nil {
		return ports.Page{}, err
	}
	items, err := b.extractItems(raw)
	if err != nil {
		return ports.Page{}, err
	}
	return ports.Page{Items: items}, nil
}

// listPage uses page/per_page with totals. The token is the zero-based
// page number of the next request.
func (b *binding) listPage(ctx context.Context, req ports.PageRequest) (ports.Page, error) {
	page := 0
	if req.Token != "" {
		n, err := strconv.Atoi(req.Token)
		if err != nil {
			return ports.Page{}, errors.New(errors.CodeInternal, "invalid page token "+strconv.Quote(req.Token))
		}
		page = n
	}

	query := url.Values{
		"page":           {strconv.Itoa(page)},
		"per_page":       {strconv.Itoa(b.client.pageSize)},
		"include_totals": {"true"},
	}
	var raw any
	if err := b.client.do(ctx, http.MethodGet, b.cfg.Endpoint.Path, query, nil, &raw); err != nil {
		return ports.Page{}, err
	}
	items, err := b.extractItems(raw)
	if err != nil {
		return ports.Page{}, err
	}

	out := ports.Page{Items: items}
	if len(items) == 0 {
		return out, nil
	}
	if obj, ok := raw.(map[string]any); ok {
		if total, ok := obj["total"].(float64); ok {
			start, _ := obj["start"].(float64)
			if int(start)+len(items) < int(total) {
				out.Next = strconv.Itoa(page + 1)
			}
			return out, nil
		}
	}
	if len(items) >= b.client.pageSize {
		out.Next = strconv.Itoa(page + 1)
	}
	return out, nil
}

// listCheckpoint uses from/take with the "next" token of the response.
func (b *binding) listCheckpoint(ctx context.Context, req ports.PageRequest) (ports.Page, error) {
	query := url.Values{"take": {strconv.Itoa(b.client.pageSize)}}
	if req.Token != "" {
		query.Set("from", req.Token)
	}
	var raw any
	if err := b.client.do(ctx, http.MethodGet, b.cfg.Endpoint.Path, query, nil, &raw); err != nil {
		return ports.Page{}, err
	}
	items, err := b.extractItems(raw)
	if err != nil {
		return ports.Page{}, err
	}

	out := ports.Page{Items: items}
	if obj, ok := raw.(map[string]any); ok && len(items) > 0 {
		if next, ok := obj["next"].(string); ok {
			out.Next = next
		}
	}
	return out, nil
}

func (b *binding) extractItems(raw any) ([]domain.Payload, error) {
	if obj, ok := raw.(map[string]any); ok {
		if b.cfg.Singleton {
			if len(obj) == 0 {
				return nil, nil
			}
			return []domain.Payload{obj}, nil
		}
		key := b.cfg.Endpoint.ListKey
		if key == "" {
			key = string(b.cfg.Type)
		}
		list, found := obj[key]
		if !found {
			return nil, errors.New(errors.CodePlatformAPIError,
				"list response for "+string(b.cfg.Type)+" has no "+strconv.Quote(key)+" field")
		}
		raw = list
	}

	switch list := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		items := make([]domain.Payload, 0, len(list))
		for _, el := range list {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, errors.New(errors.CodePlatformAPIError,
					"list response for "+string(b.cfg.Type)+" contains a non-object item")
			}
			items = append(items, m)
		}
		return items, nil
	default:
		return nil, errors.New(errors.CodePlatformAPIError,
			"unexpected list response shape for "+string(b.cfg.Type))
	}
}

func (b *binding) Create(ctx context.Context, payload domain.Payload) (domain.Payload, error) {
	var out domain.Payload
	err := b.client.do(ctx, http.MethodPost, b.cfg.Endpoint.Path, nil, payload, &out)
	return out, err
}

func (b *binding) Update(ctx context.Context, id string, payload domain.Payload) (domain.Payload, error) {
	method := b.cfg.Endpoint.UpdateMethod
	if method == "" {
		method = http.MethodPatch
	}
	path, err := b.itemPath(id)
	if err != nil {
		return nil, err
	}
	var out domain.Payload
	err = b.client.do(ctx, method, path, nil, payload, &out)
	return out, err
}

func (b *binding) Delete(ctx context.Context, id string) error {
	path, err := b.itemPath(id)
	if err != nil {
		return err
	}
	return b.client.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// itemPath addresses one item. Singletons live at the endpoint path itself;
// collection items need a remote id.
func (b *binding) itemPath(id string) (string, error) {
	if b.cfg.Singleton {
		return b.cfg.Endpoint.Path, nil
	}
	if id == "" {
		return "", errors.New(errors.CodeInternal,
			"refusing to address a "+string(b.cfg.Type)+" item without a remote id")
	}
	return b.cfg.Endpoint.Path + "/" + url.PathEscape(id), nil
}
