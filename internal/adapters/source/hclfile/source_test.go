package hclfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	portsmocks "github.com/olusolaa/tenant-reconciler/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

const tenantHCL = `
locals {
  app_url = "https://${var.DOMAIN}"
}

resource "tenant" {
  friendly_name    = upper(var.TENANT)
  session_lifetime = 168
  flags = {
    enable_client_connections = false
  }
}

resource "roles" {
  name        = "admin"
  description = "Administrators"
}

resource "roles" {
  name = "viewer"
}

resource "clients" {
  name      = "web"
  callbacks = ["${local.app_url}/callback"]
  grant_types = concat(["authorization_code"], var.EXTRA_GRANTS)
}
`

func writeHCL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newSource(t *testing.T, path string) *Source {
	keywords := source.NewKeywords(map[string]any{
		"DOMAIN":       "login.acme.test",
		"TENANT":       "acme",
		"EXTRA_GRANTS": []any{"refresh_token"},
	})
	src, err := NewSource(Config{Path: path}, keywords, portsmocks.NewQuietLogger(t))
	require.NoError(t, err)
	return src
}

func TestSource_Load(t *testing.T) {
	path := writeHCL(t, t.TempDir(), "tenant.hcl", tenantHCL)
	src := newSource(t, path)
	ctx := context.Background()

	tenant, declared, err := src.Load(ctx, domain.TypeTenant)
	require.NoError(t, err)
	assert.True(t, declared)
	require.Len(t, tenant, 1)
	assert.Equal(t, "ACME", tenant[0].Payload["friendly_name"])
	assert.Equal(t, int64(168), tenant[0].Payload["session_lifetime"])
	assert.Equal(t, map[string]any{"enable_client_connections": false}, tenant[0].Payload["flags"])

	roles, _, err := src.Load(ctx, domain.TypeRoles)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "viewer", roles[1].Payload["name"])
	assert.Contains(t, roles[0].Origin, "tenant.hcl")

	clients, _, err := src.Load(ctx, domain.TypeClients)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, []any{"https://login.acme.test/callback"}, clients[0].Payload["callbacks"])
	assert.Equal(t, []any{"authorization_code", "refresh_token"}, clients[0].Payload["grant_types"])

	_, declared, err = src.Load(ctx, domain.TypeActions)
	require.NoError(t, err)
	assert.False(t, declared)
}

func TestSource_Directory(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "a.hcl", `resource "roles" { name = "a" }`)
	writeHCL(t, dir, "b.hcl", `resource "roles" { name = "b" }`)
	writeHCL(t, dir, "notes.txt", `ignored`)

	roles, declared, err := newSource(t, dir).Load(context.Background(), domain.TypeRoles)
	require.NoError(t, err)
	assert.True(t, declared)
	require.Len(t, roles, 2)
	assert.Equal(t, "a", roles[0].Payload["name"])
}

func TestSource_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"syntax", `resource "roles" {`},
		{"unknown variable", `resource "roles" { name = var.MISSING }`},
		{"nested block", "resource \"roles\" {\n  meta {\n    x = 1\n  }\n}"},
		{"unexpected top-level block", `provider "x" {}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeHCL(t, t.TempDir(), "bad.hcl", tc.content)
			_, _, err := newSource(t, path).Load(context.Background(), domain.TypeRoles)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeSourceParseError))
		})
	}

	_, _, err := newSource(t, t.TempDir()).Load(context.Background(), domain.TypeRoles)
	assert.True(t, apperrors.Is(err, apperrors.CodeSourceParseError), "empty directory")
}

func TestConvert_RoundTrip(t *testing.T) {
	val, err := toCty(map[string]any{"n": 1.5, "list": []any{"a"}, "obj": map[string]any{"b": true}})
	require.NoError(t, err)
	assert.True(t, val.Type().IsObjectType())

	got, err := fromCty(val)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 1.5, "list": []any{"a"}, "obj": map[string]any{"b": true}}, got)

	got, err = fromCty(cty.NullVal(cty.String))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = fromCty(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}
