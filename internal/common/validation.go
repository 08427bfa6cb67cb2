package common

import (
	"fmt"
	"slices"
	"strings"

	"essaylens/internal/errors"
	"essaylens/internal/formatters"
)

var formatAliases = map[string]string{
	"md":  "markdown",
	"txt": "text",
	"yml": "yaml",
	"htm": "html",
	"a4":  "print",
}

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateFormatFor checks format against the configuration and against
// what the registry can render for data.
func ValidateFormatFor(data any, format string, supportedFormats []string) error {
	if err := ValidateOutputFormat(format, supportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}
	if !formatters.GlobalRegistry.Supports(data, format) {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("format '%s' is not available for %T", format, data), nil).
			WithContext("format", format)
	}
	return nil
}

// NormalizeFormat lowercases format and resolves short aliases such as md
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if alias, ok := formatAliases[f]; ok {
		return alias
	}
	return f
}
