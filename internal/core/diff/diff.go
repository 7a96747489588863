// Package diff classifies desired configuration items against the items
// fetched from the remote API.
package diff

import (
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/normalize"
	"github.com/olusolaa/tenant-reconciler/pkg/compare"
)

type keyedDesired struct {
	key  domain.Key
	item domain.DesiredItem
}

// Compute classifies every desired and existing item into exactly one of
// create, update, delete or conflict. Unchanged items appear nowhere.
//
// Identity keys repeated in the desired set are reported as conflicts and
// excluded from matching altogether; existing items carrying such a key are
// left alone rather than deleted. Existing items are deduplicated by remote
// identifier. Existing items without a remote identifier, or whose identity
// cannot be resolved, are not managed: never updated and never deleted.
func Compute(desired []domain.DesiredItem, existing []domain.ExistingItem, cfg domain.ResourceConfig) (domain.ChangeSet, error) {
	if cfg.Singleton {
		return computeSingleton(desired, existing, cfg), nil
	}

	cs := domain.ChangeSet{Type: cfg.Type}

	occurrences := make(map[domain.Key]int, len(desired))
	ordered := make([]keyedDesired, 0, len(desired))
	for _, item := range desired {
		key, err := normalize.IdentityOf(item.Payload, cfg)
		if err != nil {
			if missing, ok := err.(*normalize.MissingIdentityError); ok {
				missing.Origin = item.Origin
			}
			return domain.ChangeSet{}, err
		}
		occurrences[key]++
		if occurrences[key] == 1 {
			ordered = append(ordered, keyedDesired{key: key, item: item})
		}
	}

	conflicted := make(map[domain.Key]bool)
	for _, kd := range ordered {
		if n := occurrences[kd.key]; n > 1 {
			conflicted[kd.key] = true
			cs.Conflict = append(cs.Conflict, domain.Conflict{Key: kd.key, Occurrences: n})
		}
	}

	existingByKey := make(map[domain.Key]int)
	kept := make([]domain.ExistingItem, 0, len(existing))
	seenIDs := make(map[string]bool, len(existing))
	for _, ex := range existing {
		if ex.ID == "" {
			ex.ID = normalize.RemoteID(ex.Payload, cfg)
		}
		if ex.ID == "" || seenIDs[ex.ID] {
			continue
		}
		seenIDs[ex.ID] = true
		key, err := normalize.IdentityOf(ex.Payload, cfg)
		if err != nil {
			continue
		}
		ex.Key = key
		if _, found := existingByKey[key]; !found {
			existingByKey[key] = len(kept)
		}
		kept = append(kept, ex)
	}

	matched := make(map[int]bool, len(ordered))
	for _, kd := range ordered {
		if conflicted[kd.key] {
			continue
		}
		idx, found := existingByKey[kd.key]
		if !found {
			cs.Create = append(cs.Create, kd.item)
			continue
		}
		matched[idx] = true
		ex := kept[idx]
		d, e := normalize.ComparablePair(kd.item.Payload, ex.Payload, cfg)
		if compare.Equal(d, e) {
			continue
		}
		cs.Update = append(cs.Update, domain.Update{
			ID:       ex.ID,
			Key:      kd.key,
			Desired:  kd.item.Payload,
			Existing: ex.Payload,
		})
	}

	for i, ex := range kept {
		if matched[i] || conflicted[ex.Key] {
			continue
		}
		cs.Delete = append(cs.Delete, ex)
	}

	return cs, nil
}

// computeSingleton handles settings objects: at most one update and never a
// delete. A create happens only for objects that may be absent when nothing
// was fetched. More than one desired item is a conflict.
func computeSingleton(desired []domain.DesiredItem, existing []domain.ExistingItem, cfg domain.ResourceConfig) domain.ChangeSet {
	cs := domain.ChangeSet{Type: cfg.Type}
	switch len(desired) {
	case 0:
		return cs
	case 1:
	default:
		cs.Conflict = []domain.Conflict{{Key: domain.Key(cfg.Type), Occurrences: len(desired)}}
		return cs
	}

	if len(existing) == 0 && cfg.CreateWhenAbsent {
		cs.Create = desired
		return cs
	}

	var current domain.ExistingItem
	if len(existing) > 0 {
		current = existing[0]
	}
	d, e := normalize.ComparablePair(desired[0].Payload, current.Payload, cfg)
	if compare.Equal(d, e) {
		return cs
	}
	cs.Update = []domain.Update{{
		ID:       current.ID,
		Key:      domain.Key(cfg.Type),
		Desired:  desired[0].Payload,
		Existing: current.Payload,
	}}
	return cs
}

// Explain renders the field-level difference behind an update, for logs
// and dry-run output.
func Explain(u domain.Update, cfg domain.ResourceConfig) string {
	d, e := normalize.ComparablePair(u.Desired, u.Existing, cfg)
	return compare.Diff(e, d)
}
