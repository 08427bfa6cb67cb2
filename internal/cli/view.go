package cli

import (
	"context"
	"fmt"
	"os"

	"essaylens/internal/common"
	"essaylens/internal/export"
	"essaylens/internal/formatters"
	"essaylens/internal/report"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [result.json]",
	Short: "Browse an analysis result in the terminal",
	Long: `Open a saved analysis result in a terminal pager.

Keys:
  j/k, arrows  scroll
  space/b      page down/up
  t            back to the top
  c            copy the model answer
  e            export as PDF into the output directory
  q            quit`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var viewOpts struct {
	title  string
	outDir string
}

func init() {
	viewCmd.Flags().StringVar(&viewOpts.title, "title", "", "Document title for PDF export")
	viewCmd.Flags().StringVarP(&viewOpts.outDir, "output", "o", "", "Directory for PDF export (default from config)")
	_ = viewCmd.MarkFlagDirname("output")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	result, err := common.NewFileProcessor(logger).ReadResult(args[0])
	if err != nil {
		return err
	}
	text, err := formatters.GlobalRegistry.Format(result, "text")
	if err != nil {
		return err
	}

	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	if !term.IsTerminal(in) || !term.IsTerminal(out) {
		return fmt.Errorf("view needs an interactive terminal; use render --format text instead")
	}
	_, height, err := term.GetSize(out)
	if err != nil {
		return fmt.Errorf("failed to read terminal size: %w", err)
	}

	state, err := term.MakeRaw(in)
	if err != nil {
		return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(in, state)
		fmt.Fprint(os.Stdout, "\r\n")
	}()

	dir := viewOpts.outDir
	if dir == "" {
		dir = cfg.Export.OutputDir
	}
	pipeline := newPipeline(cfg, logger)

	p := newPager(text, height, cmd.OutOrStdout())
	primary, fallback := newClipboards(cmd)
	view := report.NewView(report.ViewConfig{
		Result:   result,
		Primary:  primary,
		Fallback: fallback,
		Export: func(ctx context.Context) error {
			_, err := exportToDir(ctx, pipeline,
				export.Request{Result: result, Title: defaultTitle(cfg, viewOpts.title)},
				dir, logger)
			return err
		},
		OnEvent: p.onEvent,
	})
	p.attach(view)
	defer view.Unmount()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	err = p.run(ctx, os.Stdin)
	cancel()
	p.wait()
	return err
}
