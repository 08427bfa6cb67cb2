package common

import (
	"context"
	"fmt"
	"io"

	"essaylens/internal/errors"
)

// CreateInputFunc defines how to create the backend request from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// BackendOperationFunc is a generic function signature for any backend call.
type BackendOperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// Runner carries what every file-based backend command needs
type Runner struct {
	Logger *errors.Logger
	// Out receives formatted output when no output file is set.
	Out io.Writer
}

// RunBackendCommand encapsulates the common logic for file-based CLI commands:
// read the input files, build the request, call the backend and format the answer.
func RunBackendCommand[Input, Output any](
	ctx context.Context,
	runner Runner,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation BackendOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	logger := runner.Logger
	if logger == nil {
		logger = errors.Discard()
	}
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)
	if runner.Out != nil {
		outputHandler = NewOutputHandlerTo(runner.Out, logger)
	}

	if err := fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
