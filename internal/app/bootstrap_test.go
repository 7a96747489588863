package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

const rolesYAML = `
roles:
  - name: admin
    description: Administrators
  - name: ##ROLE##
`

type captureReporter struct {
	results []domain.ReconciliationResult
}

func (c *captureReporter) Report(_ context.Context, results []domain.ReconciliationResult) error {
	c.results = results
	return nil
}

type fakeTenantAPI struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTenantAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v2/roles":
		io.WriteString(w, `{"roles":[{"id":"rol_1","name":"admin","description":"Admins"},{"id":"rol_2","name":"legacy"}],"start":0,"limit":50,"total":2}`)
	case r.Method == http.MethodPatch && r.URL.Path == "/api/v2/roles/rol_1":
		io.WriteString(w, `{"id":"rol_1","name":"admin","description":"Administrators"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v2/roles":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"rol_3","name":"viewer"}`)
	case r.Method == http.MethodDelete && r.URL.Path == "/api/v2/roles/rol_2":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"statusCode":404,"error":"Not Found","message":"unexpected call"}`)
	}
}

func (f *fakeTenantAPI) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c[:3] != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func newTestViper(t *testing.T, baseURL string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rolesYAML), 0o600))

	v := viper.New()
	v.Set("api.base_url", baseURL+"/api/v2")
	v.Set("api.token", "test-token")
	v.Set("source.yaml.path", path)
	v.Set("keyword_mappings", map[string]any{"ROLE": "viewer"})
	v.Set(KeyTypesOverride, "roles")
	return v
}

func TestBuildApplication_AppliesChanges(t *testing.T) {
	api := &fakeTenantAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	v := newTestViper(t, srv.URL)
	v.Set("policy.allow_delete", true)

	reporter := &captureReporter{}
	application, err := BuildApplicationFromViper(context.Background(), v, WithLogger(mocks.NewQuietLogger(t)), WithReporter(reporter))
	require.NoError(t, err)

	results, err := application.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, domain.TypeRoles, res.Type)
	assert.Equal(t, domain.StatusApplied, res.Status)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, results, reporter.results)

	assert.Equal(t, []string{
		"DELETE /api/v2/roles/rol_2",
		"PATCH /api/v2/roles/rol_1",
		"POST /api/v2/roles",
	}, api.mutations())
}

func TestBuildApplication_DryRun(t *testing.T) {
	api := &fakeTenantAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	v := newTestViper(t, srv.URL)
	v.Set("policy.dry_run", true)

	application, err := BuildApplicationFromViper(context.Background(), v, WithLogger(mocks.NewQuietLogger(t)), WithReporter(&captureReporter{}))
	require.NoError(t, err)

	results, err := application.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, domain.StatusPlanned, res.Status)
	assert.True(t, res.DryRun)
	assert.Equal(t, domain.Counts{Create: 1, Update: 1, Delete: 1}, res.Planned)
	assert.Equal(t, 1, res.SkippedDeletes)
	assert.Empty(t, api.mutations())
}

func TestBuildApplication_InvalidConfig(t *testing.T) {
	v := viper.New()
	v.Set("api.token", "test-token")

	_, err := BuildApplicationFromViper(context.Background(), v, WithLogger(mocks.NewQuietLogger(t)))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConfigValidation))
	assert.Contains(t, err.Error(), "BaseURL")
}

func TestBuildApplication_UnknownType(t *testing.T) {
	v := newTestViper(t, "https://tenant.example.com")
	v.Set(KeyTypesOverride, "roles,hooks")

	_, err := BuildApplicationFromViper(context.Background(), v, WithLogger(mocks.NewQuietLogger(t)), WithReporter(&captureReporter{}))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotImplemented))
}
