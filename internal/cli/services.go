package cli

import (
	"context"
	"os"
	"path/filepath"

	"essaylens/internal/backend"
	"essaylens/internal/common"
	"essaylens/internal/config"
	"essaylens/internal/errors"
	"essaylens/internal/export"
	"essaylens/internal/report"

	"github.com/spf13/cobra"
)

// Collaborator constructors, replaced in tests
var (
	newBackend = func(cfg *config.Config, logger *errors.Logger) backend.Service {
		return backend.NewClient(cfg.Backend, logger, backend.WithMaxUploadSize(cfg.App.MaxFileSize))
	}

	newPipeline = func(cfg *config.Config, logger *errors.Logger) *export.Pipeline {
		return export.NewPipeline(export.ConfigFrom(cfg.Export, logger))
	}

	newClipboards = func(cmd *cobra.Command) (report.Clipboard, report.Clipboard) {
		return report.NewSystemClipboard(), &report.OSC52Clipboard{
			Out:  cmd.OutOrStdout(),
			Tmux: os.Getenv("TMUX") != "",
		}
	}
)

// resolveFormat fills an empty format with fallback, expands aliases and
// checks the result against the configured formats.
func resolveFormat(cfg *config.Config, cmdConfig *common.CommandConfig, fallback string) error {
	if cmdConfig.OutputFormat == "" {
		cmdConfig.OutputFormat = fallback
	}
	cmdConfig.OutputFormat = common.NormalizeFormat(cmdConfig.OutputFormat)
	return common.ValidateOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
}

// completeFormats offers the configured formats for --format
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return cfgFormats(cmd.Context()), cobra.ShellCompDirectiveNoFileComp
}

func cfgFormats(ctx context.Context) []string {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg.App.SupportedFormats
	}
	return []string{"json", "yaml", "text", "markdown", "html", "print"}
}

// exportToDir runs one export and writes the artifact into dir.
func exportToDir(ctx context.Context, pipeline *export.Pipeline, req export.Request, dir string, logger *errors.Logger) (string, error) {
	artifact, err := pipeline.Export(ctx, req)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, artifact.Filename)
	if err := common.NewFileProcessor(logger).WriteBytes(path, artifact.Data); err != nil {
		return "", err
	}

	logger.Info("PDF exported",
		"file", path,
		"pages", artifact.Pages,
		"legacy", artifact.Legacy)
	return path, nil
}

// defaultTitle is the title used when --title is not given
func defaultTitle(cfg *config.Config, title string) string {
	if title != "" {
		return title
	}
	return cfg.Export.DefaultTitle
}
