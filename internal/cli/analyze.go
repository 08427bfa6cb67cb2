package cli

import (
	"context"
	"fmt"

	"essaylens/internal/common"
	"essaylens/internal/export"
	"essaylens/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --org NAME --position NAME --answer-file FILE",
	Short: "Analyze an essay answer with the analysis service",
	Long: `Send one essay answer to the analysis service and render the result.

The v2 analysis covers the overall score, organization fit, warnings,
strengths and improvements, keywords, core values, NCS competencies,
position skill match, past and similar questions, interview information,
expected interview questions and a model answer.

Use --legacy for the v1 analysis, and --pdf DIR to also export the result
as an A4 PDF.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if analyzeOpts.legacy && analyzeOpts.pdfDir != "" {
			return fmt.Errorf("--pdf is only available for the v2 analysis")
		}
		analyzeConfig.ExportURL = cfg.ExportURL()
		return resolveFormat(cfg, &analyzeConfig, cfg.App.DefaultFormat)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

var analyzeOpts struct {
	org        string
	position   string
	question   string
	answerFile string
	maxLength  int
	legacy     bool
	pdfDir     string
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOpts.org, "org", "", "Organization the essay is written for")
	analyzeCmd.Flags().StringVar(&analyzeOpts.position, "position", "", "Position applied for")
	analyzeCmd.Flags().StringVar(&analyzeOpts.question, "question", "", "Essay question (default \""+types.DefaultQuestion+"\")")
	analyzeCmd.Flags().StringVar(&analyzeOpts.answerFile, "answer-file", "", "File holding the essay answer")
	analyzeCmd.Flags().IntVar(&analyzeOpts.maxLength, "max-length", types.DefaultMaxLength, "Character limit of the answer")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.legacy, "legacy", false, "Use the v1 analysis")
	analyzeCmd.Flags().StringVar(&analyzeOpts.pdfDir, "pdf", "", "Also export the result as PDF into this directory")
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, yaml, text, markdown, html or print")
	analyzeCmd.Flags().StringVar(&analyzeConfig.Title, "title", "", "Document title for html, print and PDF output")
	_ = analyzeCmd.MarkFlagRequired("org")
	_ = analyzeCmd.MarkFlagRequired("position")
	_ = analyzeCmd.MarkFlagRequired("answer-file")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newBackend(cfg, logger)
	runner := common.Runner{Logger: logger, Out: cmd.OutOrStdout()}

	createInput := func(contents []string) (types.AnalysisRequest, error) {
		if len(contents) != 1 {
			return types.AnalysisRequest{}, fmt.Errorf("expected 1 answer file, got %d", len(contents))
		}
		req := types.AnalysisRequest{
			Organization: analyzeOpts.org,
			Position:     analyzeOpts.position,
			Question:     analyzeOpts.question,
			Answer:       contents[0],
			MaxLength:    analyzeOpts.maxLength,
		}
		req.Normalize()
		return req, req.Validate()
	}

	logDetails := func(input types.AnalysisRequest, cc common.CommandConfig) {
		logger.Info("Starting essay analysis",
			"organization", input.Organization,
			"position", input.Position,
			"answer_chars", len([]rune(input.Answer)),
			"legacy", analyzeOpts.legacy,
			"output_format", cc.OutputFormat)
	}

	files := []string{analyzeOpts.answerFile}

	if analyzeOpts.legacy {
		err := common.RunBackendCommand(cmd.Context(), runner, analyzeConfig, files,
			createInput, client.AnalyzeLegacy, logDetails)
		if err != nil {
			return fmt.Errorf("failed to analyze essay: %w", err)
		}
		logger.Info("Legacy analysis completed successfully")
		return nil
	}

	var result *types.AnalysisResult
	analyze := func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
		r, err := client.AnalyzeV2(ctx, req)
		result = r
		return r, err
	}
	if err := common.RunBackendCommand(cmd.Context(), runner, analyzeConfig, files,
		createInput, analyze, logDetails); err != nil {
		return fmt.Errorf("failed to analyze essay: %w", err)
	}
	logger.Info("Essay analysis completed successfully", "score", result.OverallScore)

	if analyzeOpts.pdfDir == "" {
		return nil
	}
	path, err := exportToDir(cmd.Context(), newPipeline(cfg, logger),
		export.Request{Result: result, Title: defaultTitle(cfg, analyzeConfig.Title)},
		analyzeOpts.pdfDir, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", export.UserMessage(err), err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), path)
	return nil
}
