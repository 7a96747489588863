package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/remote/httpapi"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/directory"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/hclfile"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/s3"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/yamlfile"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/executor"
	"github.com/olusolaa/tenant-reconciler/internal/core/fetch"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
	"github.com/olusolaa/tenant-reconciler/internal/log"
	"github.com/olusolaa/tenant-reconciler/internal/reporting/json"
	"github.com/olusolaa/tenant-reconciler/internal/reporting/text"
)

type Config struct {
	Settings        SettingsConfig      `mapstructure:"settings"`
	API             httpapi.Config      `mapstructure:"api"`
	Executor        executor.Config     `mapstructure:"executor"`
	Absence         fetch.AbsencePolicy `mapstructure:"absence"`
	Source          SourceConfig        `mapstructure:"source"`
	KeywordMappings map[string]any      `mapstructure:"keyword_mappings"`
	// Types restricts and orders the reconciled resource types. Empty means
	// the whole catalog.
	Types []string `mapstructure:"types" validate:"omitempty,unique,dive,required"`
	// Policy is read through viper directly (see adapters/policy) so that
	// flags and environment variables apply; it is decoded here only for
	// logging and tests.
	Policy map[string]any `mapstructure:"policy"`
}

type SettingsConfig struct {
	LogLevel     log.Level       `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat    log.Format      `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
	Concurrency  int             `mapstructure:"concurrency" validate:"gte=0"`
	ReporterType string          `mapstructure:"reporter" validate:"required,oneof=text json"`
	Reporter     ReporterConfigs `mapstructure:"reporter_config"`
}

type ReporterConfigs struct {
	Text *text.Config `mapstructure:"text"`
	JSON *json.Config `mapstructure:"json"`
}

// SourceConfig selects the desired-state source. Only the sub-config
// matching Type is used.
type SourceConfig struct {
	Type      string            `mapstructure:"type" validate:"required,oneof=yaml directory hcl s3"`
	YAML      *yamlfile.Config  `mapstructure:"yaml" validate:"required_if=Type yaml"`
	Directory *directory.Config `mapstructure:"directory" validate:"required_if=Type directory"`
	HCL       *hclfile.Config   `mapstructure:"hcl" validate:"required_if=Type hcl"`
	S3        *s3.Config        `mapstructure:"s3" validate:"required_if=Type s3"`
}

func (c *Config) LogConfig() log.Config {
	return log.Config{Level: c.Settings.LogLevel, Format: c.Settings.LogFormat}
}

func (c *Config) ResourceTypes() []domain.ResourceType {
	out := make([]domain.ResourceType, 0, len(c.Types))
	for _, t := range c.Types {
		out = append(out, domain.ResourceType(t))
	}
	return out
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:     log.LevelInfo,
			LogFormat:    log.FormatText,
			Concurrency:  1,
			ReporterType: text.ReporterTypeText,
			Reporter: ReporterConfigs{
				Text: &text.Config{NoColor: false},
				JSON: &json.Config{},
			},
		},
		API: httpapi.Config{
			Timeout:  30 * time.Second,
			PageSize: 50,
		},
		Executor: executor.Config{
			MaxConcurrent: executor.DefaultMaxConcurrent,
			Limit:         executor.DefaultLimit,
			Window:        executor.DefaultWindow,
		},
		Absence: fetch.DefaultAbsencePolicy(),
		Source: SourceConfig{
			Type: yamlfile.SourceTypeYAML,
			YAML: &yamlfile.Config{Path: "tenant.yaml"},
		},
		KeywordMappings: map[string]any{},
		Policy:          map[string]any{},
	}
}

// Load decodes v on top of the defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigParseError, "failed to unmarshal configuration")
	}
	return cfg, nil
}

func (c *Config) Validate(ctx context.Context) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(ctx, c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(err, apperrors.CodeConfigValidation, "configuration validation failed")
	}

	var errorDetails strings.Builder
	errorDetails.WriteString("Configuration validation failed:")
	for _, fe := range validationErrors {
		errorDetails.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation", fe.Namespace(), fe.Tag()))
	}
	return apperrors.NewUserFacing(apperrors.CodeConfigValidation, errorDetails.String(),
		"Please check your configuration file, RECONCILE_* environment variables or flags.")
}
