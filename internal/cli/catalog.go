package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"essaylens/internal/backend"
	"essaylens/internal/common"
	"essaylens/internal/types"

	"github.com/spf13/cobra"
)

var organizationsCmd = &cobra.Command{
	Use:     "organizations [code]",
	Aliases: []string{"orgs"},
	Short:   "List organizations or show one organization profile",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(getConfigFromContext(cmd.Context()), &catalogConfig, "json")
	},
	RunE: runOrganizations,
}

var interviewsCmd = &cobra.Command{
	Use:   "interviews [code]",
	Short: "Browse interview information kept by the analysis service",
	Long: `Without a code, list the organizations that have interview data.

With a code, show the interview profile of that organization, or with
--questions its question bank (filtered by --type, --category, --difficulty
and --limit), --format-info its interview format, or --stats its question
statistics.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && (interviewOpts.questions || interviewOpts.formatInfo || interviewOpts.stats) {
			return fmt.Errorf("--questions, --format-info and --stats need an organization code")
		}
		if countTrue(interviewOpts.questions, interviewOpts.formatInfo, interviewOpts.stats) > 1 {
			return fmt.Errorf("choose one of --questions, --format-info or --stats")
		}
		return resolveFormat(getConfigFromContext(cmd.Context()), &catalogConfig, "json")
	},
	RunE: runInterviews,
}

// catalogConfig is shared because only one command runs per process
var catalogConfig common.CommandConfig

var interviewOpts struct {
	questions  bool
	formatInfo bool
	stats      bool
	filter     types.InterviewQuestionFilter
}

func init() {
	for _, cmd := range []*cobra.Command{organizationsCmd, interviewsCmd} {
		cmd.Flags().StringVarP(&catalogConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
		cmd.Flags().StringVar(&catalogConfig.OutputFormat, "format", "", "Output format: json or yaml")
		_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
		})
	}

	interviewsCmd.Flags().BoolVar(&interviewOpts.questions, "questions", false, "Show the question bank")
	interviewsCmd.Flags().BoolVar(&interviewOpts.formatInfo, "format-info", false, "Show the interview format")
	interviewsCmd.Flags().BoolVar(&interviewOpts.stats, "stats", false, "Show question statistics")
	interviewsCmd.Flags().StringVar(&interviewOpts.filter.QuestionType, "type", "", "Question type filter, with --questions")
	interviewsCmd.Flags().StringVar(&interviewOpts.filter.Category, "category", "", "Question category filter, with --questions")
	interviewsCmd.Flags().IntVar(&interviewOpts.filter.Difficulty, "difficulty", 0, "Difficulty from 1 to 5, with --questions")
	interviewsCmd.Flags().IntVar(&interviewOpts.filter.Limit, "limit", 0, "Maximum number of questions (1-100), with --questions")
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func runOrganizations(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newBackend(cfg, logger)

	if len(args) == 0 {
		orgs, err := client.ListOrganizations(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list organizations: %s: %w", backend.Describe(err), err)
		}
		logger.Debug("Organizations listed", "count", len(orgs))
		return writeCatalog(cmd, orgs)
	}

	profile, err := client.GetOrganization(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get organization %s: %s: %w", args[0], backend.Describe(err), err)
	}
	return writeCatalog(cmd, profile)
}

func runInterviews(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newBackend(cfg, logger)

	if len(args) == 0 {
		codes, err := client.ListInterviews(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list interviews: %s: %w", backend.Describe(err), err)
		}
		return writeCatalog(cmd, codes)
	}

	code := args[0]
	var fetch func(ctx context.Context) (json.RawMessage, error)
	switch {
	case interviewOpts.questions:
		if err := interviewOpts.filter.Validate(); err != nil {
			return err
		}
		fetch = func(ctx context.Context) (json.RawMessage, error) {
			return client.GetInterviewQuestions(ctx, code, interviewOpts.filter)
		}
	case interviewOpts.formatInfo:
		fetch = func(ctx context.Context) (json.RawMessage, error) { return client.GetInterviewFormat(ctx, code) }
	case interviewOpts.stats:
		fetch = func(ctx context.Context) (json.RawMessage, error) { return client.GetInterviewStats(ctx, code) }
	default:
		fetch = func(ctx context.Context) (json.RawMessage, error) { return client.GetInterview(ctx, code) }
	}

	data, err := fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get interview data for %s: %s: %w", code, backend.Describe(err), err)
	}
	return writeCatalog(cmd, data)
}

func writeCatalog(cmd *cobra.Command, data any) error {
	cfg := getConfigFromContext(cmd.Context())
	if err := common.ValidateFormatFor(data, catalogConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}
	out := common.NewOutputHandlerTo(cmd.OutOrStdout(), getLoggerFromContext(cmd.Context()))
	return out.HandleOutput(data, catalogConfig)
}
