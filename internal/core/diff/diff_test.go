package diff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/normalize"
)

var rolesCfg = domain.ResourceConfig{Type: domain.TypeRoles, ServerFields: []string{"id"}}

func desiredOf(payloads ...domain.Payload) []domain.DesiredItem {
	items := make([]domain.DesiredItem, len(payloads))
	for i, p := range payloads {
		items[i] = domain.DesiredItem{Payload: p}
	}
	return items
}

func TestCompute_CreateAllWhenNothingExists(t *testing.T) {
	desired := desiredOf(
		domain.Payload{"name": "a"},
		domain.Payload{"name": "b", "description": "B"},
		domain.Payload{"name": "c"},
	)

	cs, err := Compute(desired, nil, rolesCfg)
	require.NoError(t, err)

	assert.Equal(t, desired, cs.Create)
	assert.Empty(t, cs.Update)
	assert.Empty(t, cs.Delete)
	assert.Empty(t, cs.Conflict)
}

func TestCompute_DeleteAllWhenNothingDesired(t *testing.T) {
	existing := []domain.ExistingItem{
		{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "X"}},
		{ID: "r2", Payload: domain.Payload{"id": "r2", "name": "Y"}},
	}

	cs, err := Compute(nil, existing, rolesCfg)
	require.NoError(t, err)

	require.Len(t, cs.Delete, 2)
	assert.Equal(t, "r1", cs.Delete[0].ID)
	assert.Equal(t, domain.Key("X"), cs.Delete[0].Key)
	assert.Equal(t, "r2", cs.Delete[1].ID)
	assert.Empty(t, cs.Create)
	assert.Empty(t, cs.Update)
}

func TestCompute_Scenarios(t *testing.T) {
	t.Run("Update carries remote id and full desired payload", func(t *testing.T) {
		cs, err := Compute(
			desiredOf(domain.Payload{"name": "X", "value": 1}),
			[]domain.ExistingItem{{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "X", "value": 2}}},
			rolesCfg,
		)
		require.NoError(t, err)
		require.Len(t, cs.Update, 1)
		assert.Equal(t, "r1", cs.Update[0].ID)
		assert.Equal(t, domain.Payload{"name": "X", "value": 1}, cs.Update[0].Desired)
		assert.Empty(t, cs.Create)
		assert.Empty(t, cs.Delete)
	})

	t.Run("Create when missing remotely", func(t *testing.T) {
		cs, err := Compute(desiredOf(domain.Payload{"name": "X"}), nil, rolesCfg)
		require.NoError(t, err)
		assert.Equal(t, desiredOf(domain.Payload{"name": "X"}), cs.Create)
	})

	t.Run("Unchanged emits nothing", func(t *testing.T) {
		cs, err := Compute(
			desiredOf(domain.Payload{"name": "X", "value": 1, "tags": []any{}}),
			[]domain.ExistingItem{{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "X", "value": 1.0}}},
			rolesCfg,
		)
		require.NoError(t, err)
		assert.True(t, cs.IsEmpty())
	})
}

func TestCompute_Idempotent(t *testing.T) {
	desired := desiredOf(
		domain.Payload{"name": "a", "permissions": []any{"read", "write"}},
		domain.Payload{"name": "b", "settings": map[string]any{"ttl": 30}},
	)

	first, err := Compute(desired, nil, rolesCfg)
	require.NoError(t, err)

	existing := make([]domain.ExistingItem, 0, len(first.Create))
	for i, item := range first.Create {
		p := item.Payload.Clone()
		id := fmt.Sprintf("r%d", i)
		p["id"] = id
		existing = append(existing, domain.ExistingItem{ID: id, Payload: p})
	}

	second, err := Compute(desired, existing, rolesCfg)
	require.NoError(t, err)
	assert.Empty(t, second.Create)
	assert.Empty(t, second.Update)
	assert.Empty(t, second.Delete)
}

func TestCompute_Conflicts(t *testing.T) {
	existing := []domain.ExistingItem{{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "a", "value": 9}}}
	desired := desiredOf(
		domain.Payload{"name": "a", "value": 1},
		domain.Payload{"name": "b"},
		domain.Payload{"name": "a", "value": 2},
	)

	cs, err := Compute(desired, existing, rolesCfg)
	require.NoError(t, err)

	assert.Equal(t, []domain.Conflict{{Key: "a", Occurrences: 2}}, cs.Conflict)
	assert.Equal(t, desiredOf(domain.Payload{"name": "b"}), cs.Create)
	assert.Empty(t, cs.Update, "conflicting keys must not be updated")
	assert.Empty(t, cs.Delete, "existing items claimed by a conflicting key are left alone")
}

func TestCompute_DeduplicatesExistingByRemoteID(t *testing.T) {
	existing := []domain.ExistingItem{
		{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "a"}},
		{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "a"}},
		{Payload: domain.Payload{"id": "r2", "name": "b"}},
	}

	cs, err := Compute(nil, existing, rolesCfg)
	require.NoError(t, err)
	require.Len(t, cs.Delete, 2)
	assert.Equal(t, "r1", cs.Delete[0].ID)
	assert.Equal(t, "r2", cs.Delete[1].ID, "remote id is read from the payload when not set")
}

func TestCompute_SurplusExistingWithSameKeyIsDeleted(t *testing.T) {
	existing := []domain.ExistingItem{
		{ID: "r1", Payload: domain.Payload{"id": "r1", "name": "a"}},
		{ID: "r2", Payload: domain.Payload{"id": "r2", "name": "a"}},
	}

	cs, err := Compute(desiredOf(domain.Payload{"name": "a"}), existing, rolesCfg)
	require.NoError(t, err)
	assert.Empty(t, cs.Update)
	require.Len(t, cs.Delete, 1)
	assert.Equal(t, "r2", cs.Delete[0].ID)
}

func TestCompute_ExistingWithoutRemoteIDIsUnmanaged(t *testing.T) {
	existing := []domain.ExistingItem{{Payload: domain.Payload{"name": "orphan"}}}

	t.Run("never deleted", func(t *testing.T) {
		cs, err := Compute(nil, existing, rolesCfg)
		require.NoError(t, err)
		assert.Empty(t, cs.Delete)
		assert.True(t, cs.IsEmpty())
	})

	t.Run("never updated", func(t *testing.T) {
		cs, err := Compute(desiredOf(domain.Payload{"name": "orphan", "value": 1}), existing, rolesCfg)
		require.NoError(t, err)
		assert.Empty(t, cs.Update)
		assert.Empty(t, cs.Delete)
		require.Len(t, cs.Create, 1)
	})
}

func TestCompute_PatchUpdatesIgnoreUnnamedNestedFields(t *testing.T) {
	cfg := domain.ResourceConfig{Type: domain.TypeTenant, Singleton: true, PatchUpdates: true}
	existing := []domain.ExistingItem{{Payload: domain.Payload{
		"friendly_name": "Acme",
		"flags":         map[string]any{"enable_x": true, "other_flag": true},
	}}}

	cs, err := Compute(desiredOf(domain.Payload{
		"friendly_name": "Acme",
		"flags":         map[string]any{"enable_x": true},
	}), existing, cfg)
	require.NoError(t, err)
	assert.True(t, cs.IsEmpty())

	cs, err = Compute(desiredOf(domain.Payload{
		"friendly_name": "Acme",
		"flags":         map[string]any{"enable_x": false},
	}), existing, cfg)
	require.NoError(t, err)
	assert.Len(t, cs.Update, 1)
}

func TestCompute_MissingIdentity(t *testing.T) {
	desired := []domain.DesiredItem{{Payload: domain.Payload{"description": "no name"}, Origin: "roles.yaml"}}
	_, err := Compute(desired, nil, rolesCfg)

	var missing *normalize.MissingIdentityError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "roles.yaml", missing.Origin)
}

func TestCompute_SecretAndServerFieldsNeverDriveUpdates(t *testing.T) {
	cfg := domain.ResourceConfig{
		Type:         domain.TypeClients,
		IDField:      "client_id",
		ServerFields: []string{"client_id", "tenant"},
		SecretFields: []string{"client_secret"},
	}
	desired := desiredOf(domain.Payload{"name": "app", "client_secret": "real-secret"})
	existing := []domain.ExistingItem{{Payload: domain.Payload{"client_id": "c1", "tenant": "t", "name": "app", "client_secret": "****"}}}

	cs, err := Compute(desired, existing, cfg)
	require.NoError(t, err)
	assert.True(t, cs.IsEmpty())
}

func TestCompute_Singleton(t *testing.T) {
	cfg := domain.ResourceConfig{Type: domain.TypeTenant, Singleton: true}

	t.Run("Differs yields one update", func(t *testing.T) {
		cs, err := Compute(
			desiredOf(domain.Payload{"friendly_name": "New"}),
			[]domain.ExistingItem{{Payload: domain.Payload{"friendly_name": "Old"}}},
			cfg,
		)
		require.NoError(t, err)
		require.Len(t, cs.Update, 1)
		assert.Equal(t, domain.Key("tenant"), cs.Update[0].Key)
		assert.Empty(t, cs.Create)
		assert.Empty(t, cs.Delete)
	})

	t.Run("Equal yields nothing", func(t *testing.T) {
		cs, err := Compute(
			desiredOf(domain.Payload{"friendly_name": "Same"}),
			[]domain.ExistingItem{{Payload: domain.Payload{"friendly_name": "Same", "sandbox_version": ""}}},
			cfg,
		)
		require.NoError(t, err)
		assert.True(t, cs.IsEmpty())
	})

	t.Run("No desired never deletes", func(t *testing.T) {
		cs, err := Compute(nil, []domain.ExistingItem{{Payload: domain.Payload{"friendly_name": "Old"}}}, cfg)
		require.NoError(t, err)
		assert.True(t, cs.IsEmpty())
	})

	t.Run("Nothing fetched yields update", func(t *testing.T) {
		cs, err := Compute(desiredOf(domain.Payload{"friendly_name": "New"}), nil, cfg)
		require.NoError(t, err)
		assert.Len(t, cs.Update, 1)
		assert.Empty(t, cs.Create)
	})

	t.Run("Nothing fetched yields create when absence is allowed", func(t *testing.T) {
		providerCfg := domain.ResourceConfig{Type: domain.TypeEmailProvider, Singleton: true, CreateWhenAbsent: true}
		cs, err := Compute(desiredOf(domain.Payload{"name": "smtp"}), nil, providerCfg)
		require.NoError(t, err)
		require.Len(t, cs.Create, 1)
		assert.Empty(t, cs.Update)

		cs, err = Compute(desiredOf(domain.Payload{"name": "smtp"}),
			[]domain.ExistingItem{{Payload: domain.Payload{"name": "mailgun"}}}, providerCfg)
		require.NoError(t, err)
		assert.Len(t, cs.Update, 1)
		assert.Empty(t, cs.Create)
	})
}

func TestExplain(t *testing.T) {
	u := domain.Update{Desired: domain.Payload{"name": "X", "value": 1}, Existing: domain.Payload{"name": "X", "value": 2}}
	out := Explain(u, rolesCfg)
	assert.Contains(t, out, "value")
}
