// Package source holds what the desired-state sources share: keyword
// substitution and the conversion of decoded documents into desired items.
package source

import (
	"fmt"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/pkg/convert"
)

// Document is a decoded desired-state document keyed by resource type.
type Document struct {
	Origin  string
	Entries map[string]any
}

func NewDocument(origin string, decoded any) (*Document, error) {
	entries, err := convert.ToMap(decoded)
	if err != nil {
		return nil, fmt.Errorf("%s: top level must be a mapping of resource types: %w", origin, err)
	}
	if entries == nil {
		entries = map[string]any{}
	}
	return &Document{Origin: origin, Entries: entries}, nil
}

// Items returns the items declared for rt. declared is false when the
// document does not mention rt at all.
func (d *Document) Items(rt domain.ResourceType) (items []domain.DesiredItem, declared bool, err error) {
	raw, found := d.Entries[string(rt)]
	if !found {
		return nil, false, nil
	}
	items, err = ToItems(raw, fmt.Sprintf("%s#%s", d.Origin, rt))
	return items, true, err
}

// ToItems turns a decoded value into desired items: a mapping is a single
// item (settings objects), a sequence holds one item per element and null
// is an empty collection.
func ToItems(raw any, origin string) ([]domain.DesiredItem, error) {
	if raw == nil {
		return []domain.DesiredItem{}, nil
	}
	if m, ok := convert.StringKeyed(raw).(map[string]any); ok {
		return []domain.DesiredItem{{Payload: m, Origin: origin}}, nil
	}
	list, err := convert.ToSliceOfMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	items := make([]domain.DesiredItem, 0, len(list))
	for i, m := range list {
		items = append(items, domain.DesiredItem{Payload: m, Origin: fmt.Sprintf("%s[%d]", origin, i)})
	}
	return items, nil
}
