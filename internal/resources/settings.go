package resources

import (
	"net/http"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

type brandingColors struct {
	Primary        string `mapstructure:"primary" validate:"omitempty,hexcolor"`
	PageBackground any    `mapstructure:"page_background"`
}

type brandingSchema struct {
	Colors     *brandingColors `mapstructure:"colors"`
	FaviconURL string          `mapstructure:"favicon_url" validate:"omitempty,url"`
	LogoURL    string          `mapstructure:"logo_url" validate:"omitempty,url"`
	Font       map[string]any  `mapstructure:"font"`
}

func Branding() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:      domain.TypeBranding,
		Singleton: true,
		// Templates are managed through a separate endpoint.
		DisallowedFields: []string{"templates"},
		Schema:           schemaOf[brandingSchema](),
		Endpoint: domain.Endpoint{
			Path:         "/branding",
			Paging:       domain.PagingNone,
			UpdateMethod: http.MethodPatch,
		},
	}
}

type promptsSchema struct {
	UniversalLoginExperience    string `mapstructure:"universal_login_experience" validate:"omitempty,oneof=new classic"`
	IdentifierFirst             bool   `mapstructure:"identifier_first"`
	WebauthnPlatformFirstFactor bool   `mapstructure:"webauthn_platform_first_factor"`
}

func Prompts() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:             domain.TypePrompts,
		Singleton:        true,
		PatchUpdates:     true,
		DisallowedFields: []string{"customText", "partials"},
		Schema:           schemaOf[promptsSchema](),
		Endpoint: domain.Endpoint{
			Path:         "/prompts",
			Paging:       domain.PagingNone,
			UpdateMethod: http.MethodPatch,
		},
	}
}

type emailProviderSchema struct {
	Name               string         `mapstructure:"name" validate:"required,oneof=mailgun mandrill sendgrid ses sparkpost smtp azure_cs ms365 custom"`
	Enabled            *bool          `mapstructure:"enabled"`
	DefaultFromAddress string         `mapstructure:"default_from_address" validate:"omitempty,email"`
	Credentials        map[string]any `mapstructure:"credentials"`
	Settings           map[string]any `mapstructure:"settings"`
}

func EmailProvider() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:             domain.TypeEmailProvider,
		Singleton:        true,
		CreateWhenAbsent: true,
		SecretFields:     []string{"credentials"},
		Schema:           schemaOf[emailProviderSchema](),
		Endpoint: domain.Endpoint{
			Path:         "/emails/provider",
			Paging:       domain.PagingNone,
			UpdateMethod: http.MethodPatch,
		},
	}
}
