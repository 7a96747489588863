package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/tenant-reconciler/internal/app"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

var (
	cfgFile     string
	logLevel    string
	logFormat   string
	reportType  string
	input       string
	types       string
	dryRun      bool
	allowDelete bool
)

var rootCmd = &cobra.Command{
	Use:   "tenant-reconciler",
	Short: "Reconciles declared tenant configuration against the live configuration API.",
	Long: `tenant-reconciler reads the desired configuration of a tenant (YAML, a
directory of JSON files, HCL or an S3 object), compares it with what the
configuration API currently holds and creates, updates or deletes objects
until both match. Deletes only happen with --allow-delete; --dry-run reports
the pending changes without touching the API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		application, bootstrapErr := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if bootstrapErr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Application initialization failed: %v\n", bootstrapErr)
			if appErr := (*apperrors.AppError)(nil); errors.As(bootstrapErr, &appErr) {
				if appErr.IsUserFacing {
					fmt.Fprintf(os.Stderr, "Error Details: %s\n", appErr.Message)
					if appErr.SuggestedAction != "" {
						fmt.Fprintf(os.Stderr, "Suggestion: %s\n", appErr.SuggestedAction)
					}
				}
			}
			return bootstrapErr
		}

		if _, runErr := application.Run(cmd.Context()); runErr != nil {
			userMsg, suggestion, ok := apperrors.GetUserFacingMessage(runErr)
			if !ok {
				userMsg = runErr.Error()
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
			if suggestion != "" {
				fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
			}
			return runErr
		}

		return nil
	},
}

func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is ./.tenant-reconciler.yaml or $HOME/.tenant-reconciler.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Override log format (text, json)")
	flags.StringVar(&reportType, "report", "", "Override report format (text, json)")
	flags.StringVarP(&input, "input", "i", "", "Desired state location: a .yaml or .hcl file, a directory, or s3://bucket/key")
	flags.StringVar(&types, "types", "", "Comma separated resource types to reconcile (default: all)")
	flags.BoolVar(&dryRun, "dry-run", false, "Report pending changes without applying them")
	flags.BoolVar(&allowDelete, "allow-delete", false, "Delete remote objects that are no longer declared")

	viper.BindPFlag("settings.log_level", flags.Lookup("log-level"))
	viper.BindPFlag("settings.log_format", flags.Lookup("log-format"))
	viper.BindPFlag("settings.reporter", flags.Lookup("report"))
	viper.BindPFlag(app.KeyInput, flags.Lookup("input"))
	viper.BindPFlag(app.KeyTypesOverride, flags.Lookup("types"))
	viper.BindPFlag("policy.dry_run", flags.Lookup("dry-run"))
	viper.BindPFlag("policy.allow_delete", flags.Lookup("allow-delete"))

	viper.SetEnvPrefix("RECONCILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Nested keys are only seen by Unmarshal when viper knows them.
	for _, key := range []string{
		"api.base_url", "api.token", "api.client_id", "api.client_secret", "api.token_url", "api.audience",
		"source.type", "policy.allow_delete", "policy.dry_run", "policy.ignore_unavailable_migrations",
	} {
		viper.BindEnv(key)
	}
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".tenant-reconciler")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using configuration file:", viper.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintln(os.Stderr, "Config file not found, using defaults and environment variables.")
		} else {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}

	return nil
}
