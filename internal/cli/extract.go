package cli

import (
	"fmt"

	"essaylens/internal/backend"
	"essaylens/internal/common"
	"essaylens/internal/types"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [text-file]",
	Short: "Extract skills from a text",
	Long: `Extract technical and soft skills from a text file.

Repeat --requirement to also match the skills against job requirements.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(getConfigFromContext(cmd.Context()), &extractConfig, "json")
	},
	RunE: runSkills,
}

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Split a resume into sections and extract its skills",
	Long: `Parse a plain-text resume into sections such as education and
experience, and extract the skills it mentions.

Repeat --requirement to also match the skills against job requirements.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(getConfigFromContext(cmd.Context()), &extractConfig, "json")
	},
	RunE: runParse,
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file.pdf]",
	Short: "Extract the text of a PDF with the analysis service",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(getConfigFromContext(cmd.Context()), &extractConfig, "json")
	},
	RunE: runUpload,
}

var extractConfig common.CommandConfig

var requirements []string

func init() {
	for _, cmd := range []*cobra.Command{skillsCmd, parseCmd, uploadCmd} {
		cmd.Flags().StringVarP(&extractConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
		cmd.Flags().StringVar(&extractConfig.OutputFormat, "format", "", "Output format: json or yaml")
	}
	for _, cmd := range []*cobra.Command{skillsCmd, parseCmd} {
		cmd.Flags().StringArrayVar(&requirements, "requirement", nil, "Job requirement to match against (repeatable)")
	}
}

func runSkills(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newBackend(cfg, logger)

	createInput := func(contents []string) (types.SkillAnalysisRequest, error) {
		return types.SkillAnalysisRequest{Text: contents[0], Requirements: requirements}, nil
	}
	logDetails := func(input types.SkillAnalysisRequest, cc common.CommandConfig) {
		logger.Info("Starting skill extraction",
			"text_chars", len([]rune(input.Text)),
			"requirements", len(input.Requirements))
	}

	err := common.RunBackendCommand(cmd.Context(), common.Runner{Logger: logger, Out: cmd.OutOrStdout()},
		extractConfig, args, createInput, client.ExtractSkills, logDetails)
	if err != nil {
		return fmt.Errorf("failed to extract skills: %w", err)
	}
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newBackend(cfg, logger)

	createInput := func(contents []string) (types.ResumeParseRequest, error) {
		return types.ResumeParseRequest{Text: contents[0], JobRequirements: requirements}, nil
	}
	logDetails := func(input types.ResumeParseRequest, cc common.CommandConfig) {
		logger.Info("Starting resume parsing",
			"text_chars", len([]rune(input.Text)),
			"requirements", len(input.JobRequirements))
	}

	err := common.RunBackendCommand(cmd.Context(), common.Runner{Logger: logger, Out: cmd.OutOrStdout()},
		extractConfig, args, createInput, client.ParseResume, logDetails)
	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newBackend(cfg, logger)

	data, err := common.NewFileProcessor(logger).ReadBytes(args[0])
	if err != nil {
		return err
	}

	resp, err := client.UploadPDF(cmd.Context(), args[0], data)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %s: %w", args[0], backend.Describe(err), err)
	}
	logger.Info("PDF text extracted", "file", args[0], "text_chars", len([]rune(resp.Text)))

	return common.NewOutputHandlerTo(cmd.OutOrStdout(), logger).HandleOutput(resp, extractConfig)
}
