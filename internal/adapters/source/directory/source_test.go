package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	portsmocks "github.com/olusolaa/tenant-reconciler/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestSource_Load(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "tenant.json"), `{"friendly_name": "##NAME##"}`)
	write(t, filepath.Join(root, "roles.json"), `[{"name":"admin"},{"name":"viewer"}]`)
	write(t, filepath.Join(root, "clients", "b-web.json"), `{"name":"web","callbacks":@@CALLBACKS@@}`)
	write(t, filepath.Join(root, "clients", "a-api.json"), `{"name":"api"}`)
	write(t, filepath.Join(root, "clients", "README.md"), `ignored`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "actions"), 0o755))

	keywords := source.NewKeywords(map[string]any{"NAME": "Acme", "CALLBACKS": []any{"https://cb"}})
	src, err := NewSource(Config{Path: root}, keywords, portsmocks.NewQuietLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	tenant, declared, err := src.Load(ctx, domain.TypeTenant)
	require.NoError(t, err)
	assert.True(t, declared)
	require.Len(t, tenant, 1)
	assert.Equal(t, "Acme", tenant[0].Payload["friendly_name"])

	roles, _, err := src.Load(ctx, domain.TypeRoles)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	clients, _, err := src.Load(ctx, domain.TypeClients)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "api", clients[0].Payload["name"])
	assert.Equal(t, []any{"https://cb"}, clients[1].Payload["callbacks"])
	assert.Equal(t, filepath.Join(root, "clients", "b-web.json"), clients[1].Origin)

	actions, declared, err := src.Load(ctx, domain.TypeActions)
	require.NoError(t, err)
	assert.True(t, declared, "an empty directory declares an empty collection")
	assert.Empty(t, actions)

	_, declared, err = src.Load(ctx, domain.TypeResourceServers)
	require.NoError(t, err)
	assert.False(t, declared)
}

func TestSource_Errors(t *testing.T) {
	_, err := NewSource(Config{Path: filepath.Join(t.TempDir(), "missing")}, nil, portsmocks.NewQuietLogger(t))
	assert.True(t, apperrors.Is(err, apperrors.CodeConfigValidation))

	root := t.TempDir()
	write(t, filepath.Join(root, "roles.json"), `[{"name":`)
	write(t, filepath.Join(root, "clients", "x.json"), `[{"name":"x"}]`)

	src, err := NewSource(Config{Path: root}, nil, portsmocks.NewQuietLogger(t))
	require.NoError(t, err)

	_, _, err = src.Load(context.Background(), domain.TypeRoles)
	assert.True(t, apperrors.Is(err, apperrors.CodeSourceParseError))

	_, _, err = src.Load(context.Background(), domain.TypeClients)
	assert.True(t, apperrors.Is(err, apperrors.CodeSourceParseError))
}
