package resources

import (
	"net/http"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

const tenantFlagsKey = "flags"

type tenantSchema struct {
	FriendlyName        string          `mapstructure:"friendly_name" validate:"omitempty,max=255"`
	PictureURL          string          `mapstructure:"picture_url" validate:"omitempty,url"`
	SupportEmail        string          `mapstructure:"support_email" validate:"omitempty,email"`
	SupportURL          string          `mapstructure:"support_url" validate:"omitempty,url"`
	SessionLifetime     float64         `mapstructure:"session_lifetime" validate:"omitempty,gte=1"`
	IdleSessionLifetime float64         `mapstructure:"idle_session_lifetime" validate:"omitempty,gte=1"`
	DefaultAudience     string          `mapstructure:"default_audience"`
	DefaultDirectory    string          `mapstructure:"default_directory"`
	EnabledLocales      []string        `mapstructure:"enabled_locales" validate:"omitempty,dive,min=2"`
	Flags               map[string]bool `mapstructure:"flags"`
}

func Tenant() domain.ResourceConfig {
	return domain.ResourceConfig{
		Type:         domain.TypeTenant,
		Singleton:    true,
		PatchUpdates: true,
		ServerFields: []string{"sandbox_versions_available"},
		Schema:       schemaOf[tenantSchema](),
		Shape:        shapeTenant,
		Endpoint: domain.Endpoint{
			Path:         "/tenants/settings",
			Paging:       domain.PagingNone,
			UpdateMethod: http.MethodPatch,
		},
	}
}

// shapeTenant drops desired migration flags the backend does not offer for
// this tenant when ignore_unavailable_migrations is set. Sending them would
// fail the whole settings update.
func shapeTenant(in domain.ShapeInput) []domain.DesiredItem {
	if in.Toggle == nil || !in.Toggle(domain.PolicyIgnoreUnavailableMigrations) {
		return in.Desired
	}
	if len(in.Desired) != 1 {
		return in.Desired
	}

	desiredFlags, ok := in.Desired[0].Payload[tenantFlagsKey].(map[string]any)
	if !ok {
		return in.Desired
	}
	var available map[string]any
	if len(in.Existing) > 0 {
		available, _ = in.Existing[0].Payload[tenantFlagsKey].(map[string]any)
	}

	kept := make(map[string]any, len(desiredFlags))
	for flag, v := range desiredFlags {
		if _, offered := available[flag]; offered {
			kept[flag] = v
		}
	}
	if len(kept) == len(desiredFlags) {
		return in.Desired
	}

	item := in.Desired[0]
	item.Payload = item.Payload.Clone()
	if len(kept) == 0 {
		delete(item.Payload, tenantFlagsKey)
	} else {
		item.Payload[tenantFlagsKey] = kept
	}
	return []domain.DesiredItem{item}
}
