package cli

import (
	"fmt"

	"essaylens/internal/common"
	"essaylens/internal/export"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [result.json]",
	Short: "Export an analysis result as an A4 PDF",
	Long: `Export a saved analysis result as a paginated A4 PDF.

The print document is built from the result and rasterized with headless
Chromium. With --from-html a previously rendered interactive report is
captured instead; this produces an image-based PDF.

The file name is <title>_<YYYY-MM-DD>.pdf inside the output directory.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && exportOpts.fromHTML == "" {
			return fmt.Errorf("give a result file or --from-html")
		}
		if len(args) == 1 && exportOpts.fromHTML != "" {
			return fmt.Errorf("a result file and --from-html cannot be combined")
		}
		return nil
	},
	RunE: runExport,
}

var exportOpts struct {
	fromHTML string
	title    string
	outDir   string
}

func init() {
	exportCmd.Flags().StringVar(&exportOpts.fromHTML, "from-html", "", "Capture a rendered interactive report instead of a result")
	exportCmd.Flags().StringVar(&exportOpts.title, "title", "", "Document title, also used in the file name")
	exportCmd.Flags().StringVarP(&exportOpts.outDir, "output", "o", "", "Output directory (default from config)")

	_ = exportCmd.MarkFlagFilename("from-html", "html", "htm")
	_ = exportCmd.MarkFlagDirname("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	fp := common.NewFileProcessor(logger)

	req := export.Request{Title: defaultTitle(cfg, exportOpts.title)}
	if len(args) == 1 {
		result, err := fp.ReadResult(args[0])
		if err != nil {
			return err
		}
		req.Result = result
	} else {
		html, err := fp.ReadBytes(exportOpts.fromHTML)
		if err != nil {
			return err
		}
		req.InteractiveHTML = html
	}

	dir := exportOpts.outDir
	if dir == "" {
		dir = cfg.Export.OutputDir
	}

	path, err := exportToDir(cmd.Context(), newPipeline(cfg, logger), req, dir, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", export.UserMessage(err), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
