package resources

import (
	"net/http"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

type logStreamSchema struct {
	Name   string         `mapstructure:"name" validate:"required,max=128"`
	Type   string         `mapstructure:"type" validate:"required,oneof=http eventbridge eventgrid datadog splunk sumo segment mixpanel"`
	Status string         `mapstructure:"status" validate:"omitempty,oneof=active paused suspended"`
	Sink   map[string]any `mapstructure:"sink"`
}

func LogStreams() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:             domain.TypeLogStreams,
		ServerFields:     []string{domain.KeyID},
		CreateOnlyFields: []string{"type"},
		SecretFields: []string{
			"sink.httpAuthorization",
			"sink.datadogApiKey",
			"sink.splunkToken",
			"sink.mixpanelServiceAccountPassword",
			"sink.segmentWriteKey",
		},
		Schema: schemaOf[logStreamSchema](),
		Endpoint: domain.Endpoint{
			Path:   "/log-streams",
			Paging: domain.PagingNone,
		},
	}
}

type roleSchema struct {
	Name        string `mapstructure:"name" validate:"required,max=50"`
	Description string `mapstructure:"description" validate:"omitempty,max=140"`
}

func Roles() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:         domain.TypeRoles,
		ServerFields: []string{domain.KeyID},
		// Role permissions are assigned through their own endpoint.
		DisallowedFields: []string{"permissions"},
		Schema:           schemaOf[roleSchema](),
		Endpoint: domain.Endpoint{
			Path:    "/roles",
			ListKey: "roles",
			Paging:  domain.PagingPage,
		},
	}
}

type resourceServerSchema struct {
	Name                string `mapstructure:"name" validate:"omitempty,max=200"`
	Identifier          string `mapstructure:"identifier" validate:"required,max=600"`
	SigningAlg          string `mapstructure:"signing_alg" validate:"omitempty,oneof=HS256 RS256 PS256"`
	TokenLifetime       int    `mapstructure:"token_lifetime" validate:"omitempty,gte=0"`
	AllowOfflineAccess  bool   `mapstructure:"allow_offline_access"`
	SkipConsentForFirst bool   `mapstructure:"skip_consent_for_verifiable_first_party_clients"`
	Scopes              []struct {
		Value       string `mapstructure:"value" validate:"required"`
		Description string `mapstructure:"description"`
	} `mapstructure:"scopes" validate:"omitempty,dive"`
}

func ResourceServers() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:             domain.TypeResourceServers,
		IdentityFields:   []string{domain.KeyIdentifier},
		ServerFields:     []string{domain.KeyID, "is_system"},
		CreateOnlyFields: []string{domain.KeyIdentifier},
		DisallowedFields: []string{"is_system"},
		SecretFields:     []string{"signing_secret"},
		Schema:           schemaOf[resourceServerSchema](),
		Endpoint: domain.Endpoint{
			Path:    "/resource-servers",
			ListKey: "resource_servers",
			Paging:  domain.PagingPage,
		},
	}
}

type clientSchema struct {
	Name           string   `mapstructure:"name" validate:"required,max=128"`
	AppType        string   `mapstructure:"app_type" validate:"omitempty,oneof=native spa regular_web non_interactive"`
	Callbacks      []string `mapstructure:"callbacks" validate:"omitempty,dive,required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	WebOrigins     []string `mapstructure:"web_origins"`
	GrantTypes     []string `mapstructure:"grant_types"`
	IsFirstParty   *bool    `mapstructure:"is_first_party"`
}

func Clients() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:    domain.TypeClients,
		IDField: "client_id",
		ServerFields: []string{
			"client_id",
			"tenant",
			"global",
			"signing_keys",
			"callback_url_template",
		},
		SecretFields: []string{"client_secret"},
		Schema:       schemaOf[clientSchema](),
		Endpoint: domain.Endpoint{
			Path:    "/clients",
			ListKey: "clients",
			Paging:  domain.PagingPage,
		},
	}
}

type actionTrigger struct {
	ID      string `mapstructure:"id" validate:"required"`
	Version string `mapstructure:"version" validate:"required"`
}

type actionSchema struct {
	Name              string          `mapstructure:"name" validate:"required,max=255"`
	Code              string          `mapstructure:"code" validate:"required"`
	Runtime           string          `mapstructure:"runtime"`
	SupportedTriggers []actionTrigger `mapstructure:"supported_triggers" validate:"required,min=1,dive"`
	Dependencies      []struct {
		Name    string `mapstructure:"name" validate:"required"`
		Version string `mapstructure:"version" validate:"required"`
	} `mapstructure:"dependencies" validate:"omitempty,dive"`
	Secrets []map[string]any `mapstructure:"secrets"`
}

func Actions() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type: domain.TypeActions,
		ServerFields: []string{
			domain.KeyID,
			"status",
			"created_at",
			"updated_at",
			"deployed_version",
			"installed_integration_id",
			"all_changes_deployed",
			"built_at",
		},
		SecretFields: []string{"secrets"},
		Schema:       schemaOf[actionSchema](),
		Endpoint: domain.Endpoint{
			Path:         "/actions/actions",
			ListKey:      "actions",
			Paging:       domain.PagingPage,
			UpdateMethod: http.MethodPatch,
		},
	}
}
