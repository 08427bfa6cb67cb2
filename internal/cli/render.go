package cli

import (
	"fmt"

	"essaylens/internal/common"
	"essaylens/internal/present"
	"essaylens/internal/report"
	"essaylens/internal/types"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [result.json]",
	Short: "Render a saved analysis result",
	Long: `Render a saved analysis result without calling the analysis service.

Formats: json, yaml, text, markdown, html (interactive report) and print
(A4 document). Use --legacy for results of the v1 analysis, and
--copy-answer to place the model answer on the clipboard.

An html report opened from disk exports through a running "essaylens serve",
at --export-url.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if renderOpts.legacy && renderOpts.copyAnswer {
			return fmt.Errorf("--copy-answer needs a v2 result")
		}
		if renderConfig.ExportURL == "" {
			renderConfig.ExportURL = cfg.ExportURL()
		}
		return resolveFormat(cfg, &renderConfig, cfg.App.DefaultFormat)
	},
	RunE: runRender,
}

var renderConfig common.CommandConfig

var renderOpts struct {
	legacy     bool
	copyAnswer bool
}

func init() {
	renderCmd.Flags().StringVarP(&renderConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderConfig.OutputFormat, "format", "", "Output format: json, yaml, text, markdown, html or print")
	renderCmd.Flags().StringVar(&renderConfig.Title, "title", "", "Document title for html and print output")
	renderCmd.Flags().StringVar(&renderConfig.ExportURL, "export-url", "", "Export endpoint of a running server, for html output (default: the configured server)")
	renderCmd.Flags().BoolVar(&renderOpts.legacy, "legacy", false, "The file holds a v1 analysis result")
	renderCmd.Flags().BoolVar(&renderOpts.copyAnswer, "copy-answer", false, "Copy the model answer to the clipboard")

	_ = renderCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	fp := common.NewFileProcessor(logger)
	out := common.NewOutputHandlerTo(cmd.OutOrStdout(), logger)

	if renderOpts.legacy {
		data, err := fp.ReadBytes(args[0])
		if err != nil {
			return err
		}
		legacy, err := types.DecodeLegacyResult(data)
		if err != nil {
			return err
		}
		if err := common.ValidateFormatFor(legacy, renderConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		return out.HandleOutput(legacy, renderConfig)
	}

	result, err := fp.ReadResult(args[0])
	if err != nil {
		return err
	}
	if err := out.HandleOutput(result, renderConfig); err != nil {
		return err
	}

	if !renderOpts.copyAnswer {
		return nil
	}
	primary, fallback := newClipboards(cmd)
	view := report.NewView(report.ViewConfig{
		Result:   result,
		Primary:  primary,
		Fallback: fallback,
	})
	defer view.Unmount()
	if err := view.CopyModelAnswer(cmd.Context()); err != nil {
		return fmt.Errorf("%s: %w", present.MessageCopyFailed, err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), present.LabelCopied)
	return nil
}
