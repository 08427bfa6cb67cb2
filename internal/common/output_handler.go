package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"essaylens/internal/errors"
	"essaylens/internal/formatters"
	"essaylens/internal/report"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	// Title names the html and print documents.
	Title string
	// ExportURL is where a standalone html report posts export requests.
	ExportURL string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	out           io.Writer
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler writing to stdout
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return NewOutputHandlerTo(os.Stdout, logger)
}

// NewOutputHandlerTo creates an output handler writing to out when no file is given
func NewOutputHandlerTo(out io.Writer, logger *errors.Logger) *OutputHandler {
	if logger == nil {
		logger = errors.Discard()
	}
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		out:           out,
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	registry := oh.registry
	if config.Title != "" || config.ExportURL != "" {
		registry = formatters.NewFormatterRegistry(report.Options{Title: config.Title, ExportURL: config.ExportURL})
	}

	output, err := registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err
		}

		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	if _, err := io.WriteString(oh.out, output); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED", "Cannot write output", err)
	}
	return nil
}

// Supports reports whether format can render data
func (oh *OutputHandler) Supports(data any, format string) bool {
	return oh.registry.Supports(data, format)
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
