package formatters

import (
	"encoding/json"
	"fmt"
	"sort"

	"essaylens/internal/report"
	"essaylens/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters.
// opts configures the html and print documents.
func NewFormatterRegistry(opts report.Options) *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("html", "AnalysisResult", &HTMLFormatter{Options: opts})
	registry.RegisterFormatter("print", "AnalysisResult", &PrintFormatter{Options: opts})
	registry.RegisterFormatter("text", "LegacyAnalysisResult", &LegacyTextFormatter{})
	registry.RegisterFormatter("markdown", "LegacyAnalysisResult", &LegacyMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// Supports reports whether format can render data
func (fr *FormatterRegistry) Supports(data any, format string) bool {
	formatters, exists := fr.formatters[format]
	if !exists {
		return false
	}
	if _, exists := formatters[getDataType(data)]; exists {
		return true
	}
	_, exists = formatters["any"]
	return exists
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.AnalysisResult:
		return "AnalysisResult"
	case *types.LegacyAnalysisResult:
		return "LegacyAnalysisResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	if raw, ok := data.(json.RawMessage); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", err
		}
		data = v
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter renders any data as YAML using its JSON field names
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	// Round trip through JSON so keys follow the json tags.
	var raw []byte
	switch v := data.(type) {
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return "", err
		}
		raw = b
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

// HTMLFormatter renders the interactive report page
type HTMLFormatter struct {
	Options report.Options
}

func (hf *HTMLFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected *types.AnalysisResult, got %T", data)
	}
	page, err := report.RenderInteractive(result, hf.Options)
	if err != nil {
		return "", err
	}
	return string(page), nil
}

func (hf *HTMLFormatter) SupportedType() string {
	return "AnalysisResult"
}

// PrintFormatter renders the A4 print document
type PrintFormatter struct {
	Options report.Options
}

func (pf *PrintFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected *types.AnalysisResult, got %T", data)
	}
	doc, err := report.RenderPrint(result, pf.Options)
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

func (pf *PrintFormatter) SupportedType() string {
	return "AnalysisResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry(report.Options{})
