package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/policy"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/remote/httpapi"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/directory"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/hclfile"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/s3"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/yamlfile"
	"github.com/olusolaa/tenant-reconciler/internal/config"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/executor"
	"github.com/olusolaa/tenant-reconciler/internal/core/fetch"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/core/service"
	"github.com/olusolaa/tenant-reconciler/internal/core/validation"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
	"github.com/olusolaa/tenant-reconciler/internal/log"
	jsonreport "github.com/olusolaa/tenant-reconciler/internal/reporting/json"
	"github.com/olusolaa/tenant-reconciler/internal/reporting/text"
	"github.com/olusolaa/tenant-reconciler/internal/resources"
)

// Keys of CLI-only values read back from viper.
const (
	KeyTypesOverride = "types_override"
	KeyInput         = "input"
)

// BuildOption adjusts the wiring, mainly for tests.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger   ports.Logger
	s3Client s3.ObjectGetter
	reporter ports.Reporter
}

func WithLogger(logger ports.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = logger }
}

func WithS3Client(client s3.ObjectGetter) BuildOption {
	return func(o *buildOptions) { o.s3Client = client }
}

func WithReporter(reporter ports.Reporter) BuildOption {
	return func(o *buildOptions) { o.reporter = reporter }
}

func BuildApplicationFromViper(ctx context.Context, v *viper.Viper, opts ...BuildOption) (*Application, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := loadConfig(ctx, v)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger, err = log.NewLogger(cfg.LogConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
			return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
		}
	}
	logger.Infof(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	} else {
		logger.Debugf(ctx, "No configuration file found, using defaults/env/flags.")
	}

	registry := service.NewComponentRegistry()
	if err := resources.Register(registry); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to register resource types")
	}
	logger.Debugf(ctx, "Registered %d resource types", len(registry.ResourceTypes()))

	keywords := source.NewKeywords(cfg.KeywordMappings)
	if names := keywords.Names(); len(names) > 0 {
		logger.Debugf(ctx, "Keyword replacement enabled for: %v", names)
	}

	src, err := buildSource(ctx, cfg.Source, keywords, logger, o.s3Client)
	if err != nil {
		return nil, err
	}
	if err := registry.RegisterSource(src); err != nil {
		return nil, err
	}
	desired, err := registry.GetSource(cfg.Source.Type)
	if err != nil {
		return nil, err
	}

	client, err := httpapi.NewClient(ctx, cfg.API, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize API client")
	}
	logger.Infof(ctx, "Using %s API client for %s", client.Type(), cfg.API.BaseURL)

	pol := policy.Layered{
		policy.NewViper(v),
		policy.Static{
			domain.PolicyAllowDelete: false,
			domain.PolicyDryRun:      false,
		},
	}
	logger.Infof(ctx, "Policy: dry_run=%t allow_delete=%t",
		ports.PolicyBool(pol, domain.PolicyDryRun), ports.PolicyBool(pol, domain.PolicyAllowDelete))

	reporter := o.reporter
	if reporter == nil {
		reporter, err = buildReporter(ctx, cfg.Settings, logger)
		if err != nil {
			return nil, err
		}
	}

	exec := executor.New(cfg.Executor, logger)
	execCfg := exec.Config()
	logger.Debugf(ctx, "Executor: max_concurrency=%d, %d operations per %s",
		execCfg.MaxConcurrent, execCfg.Limit, execCfg.Window)

	reconciler := service.NewReconciler(
		validation.New(),
		fetch.NewFetcher(cfg.Absence, logger),
		exec,
		pol,
		logger.WithFields(map[string]any{"component": "reconciler"}),
	)

	engine, err := service.NewReconcileEngine(
		registry, desired, client, reconciler, reporter,
		logger.WithFields(map[string]any{"component": "engine"}),
		cfg.ResourceTypes(), cfg.Settings.Concurrency,
	)
	if err != nil {
		return nil, err
	}

	logger.Infof(ctx, "Application bootstrap complete")
	return &Application{Engine: engine, Logger: logger, Config: cfg, Executor: exec}, nil
}

func loadConfig(ctx context.Context, v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if types := parseTypesOverride(v.GetString(KeyTypesOverride)); len(types) > 0 {
		cfg.Types = types
	}
	if err := applyInputOverride(&cfg.Source, v.GetString(KeyInput)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSource(ctx context.Context, cfg config.SourceConfig, keywords *source.Keywords, logger ports.Logger, s3Client s3.ObjectGetter) (ports.DesiredStateSource, error) {
	srcLog := logger.WithFields(map[string]any{"component": "source", "type": cfg.Type})

	var (
		src ports.DesiredStateSource
		err error
	)
	switch cfg.Type {
	case yamlfile.SourceTypeYAML:
		src, err = yamlfile.NewSource(*cfg.YAML, keywords, srcLog)
		if err == nil {
			srcLog.Infof(ctx, "Using YAML source: %s", cfg.YAML.Path)
		}
	case directory.SourceTypeDirectory:
		src, err = directory.NewSource(*cfg.Directory, keywords, srcLog)
		if err == nil {
			srcLog.Infof(ctx, "Using directory source: %s", cfg.Directory.Path)
		}
	case hclfile.SourceTypeHCL:
		src, err = hclfile.NewSource(*cfg.HCL, keywords, srcLog)
		if err == nil {
			srcLog.Infof(ctx, "Using HCL source: %s", cfg.HCL.Path)
		}
	case s3.SourceTypeS3:
		src, err = s3.NewSource(ctx, *cfg.S3, keywords, srcLog, s3.WithClient(s3Client))
		if err == nil {
			srcLog.Infof(ctx, "Using S3 source: s3://%s/%s", cfg.S3.Bucket, cfg.S3.Key)
		}
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("invalid source type: %s", cfg.Type), "Supported: yaml, directory, hcl, s3")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, fmt.Sprintf("failed to initialize %s source", cfg.Type))
	}
	return src, nil
}

func buildReporter(ctx context.Context, cfg config.SettingsConfig, logger ports.Logger) (ports.Reporter, error) {
	reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": cfg.ReporterType})
	switch cfg.ReporterType {
	case text.ReporterTypeText:
		textCfg := text.Config{}
		if cfg.Reporter.Text != nil {
			textCfg = *cfg.Reporter.Text
		}
		reporter, err := text.NewReporter(textCfg, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize Text reporter")
		}
		reportLog.Infof(ctx, "Using Text reporter (Color: %t)", !textCfg.NoColor)
		return reporter, nil
	case jsonreport.ReporterTypeJSON:
		jsonCfg := jsonreport.Config{}
		if cfg.Reporter.JSON != nil {
			jsonCfg = *cfg.Reporter.JSON
		}
		reporter, err := jsonreport.NewReporter(jsonCfg, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize JSON reporter")
		}
		reportLog.Infof(ctx, "Using JSON reporter")
		return reporter, nil
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type: %s", cfg.ReporterType), "Supported: text, json")
	}
}
