package cli

import (
	"context"
	"fmt"

	"essaylens/internal/config"
	"essaylens/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "essaylens",
	Short: "Review job-application essay analyses",
	Long: `essaylens talks to the essay analysis service and presents what it
returns: an interactive HTML report, a print-ready A4 document, a PDF export,
a terminal viewer, and plain text, markdown, JSON or YAML renderings.

It also browses the organization and interview catalogues the service keeps.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command with ctx as the base context
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime reads configuration after flags are parsed, so bound flags win,
// then attaches the config and logger to the command context.
func loadRuntime(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["skipConfig"] == "true" {
		return nil
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("Starting essaylens",
		"version", Version,
		"command", cmd.Name(),
		"backend", cfg.Backend.BaseURL)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// bindFlag ties a flag to a viper key so the flag overrides config and environment
func bindFlag(cmd *cobra.Command, key, flagName string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	if err := viper.BindPFlag(key, flags.Lookup(flagName)); err != nil {
		panic(err)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("backend-url", "", "Analysis service base URL (overrides config)")
	bindFlag(rootCmd, "app.logLevel", "log-level", true)
	bindFlag(rootCmd, "backend.baseURL", "backend-url", true)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(organizationsCmd)
	rootCmd.AddCommand(interviewsCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
