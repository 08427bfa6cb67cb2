package formatters

import (
	"fmt"
	"strings"

	"essaylens/internal/present"
	"essaylens/internal/types"
)

// markdownWriter renders sections as GitHub flavoured markdown
type markdownWriter struct {
	b strings.Builder
}

func (w *markdownWriter) title(text string) {
	w.b.WriteString("# " + text + "\n")
}

func (w *markdownWriter) heading(text string) {
	w.b.WriteString("\n## " + text + "\n\n")
}

func (w *markdownWriter) subheading(text string) {
	w.b.WriteString("### " + text + "\n\n")
}

func (w *markdownWriter) field(label, value string) {
	w.b.WriteString(fmt.Sprintf("- **%s:** %s\n", strings.TrimSpace(label), value))
}

func (w *markdownWriter) bullet(text string) {
	w.b.WriteString("- " + text + "\n")
}

func (w *markdownWriter) paragraph(text string) {
	w.b.WriteString("\n" + text + "\n\n")
}

func (w *markdownWriter) scored(text string, _ present.Tone) {
	w.b.WriteString("**" + text + "**\n")
}

func (w *markdownWriter) String() string {
	return w.b.String()
}

// AnalysisMarkdownFormatter handles markdown formatting for v2 analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected *types.AnalysisResult, got %T", data)
	}

	w := &markdownWriter{}
	w.title("자기소개서 분석 결과")
	writeSections(w, result)
	return w.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// LegacyMarkdownFormatter handles markdown formatting for v1 analysis results
type LegacyMarkdownFormatter struct{}

func (lmf *LegacyMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.LegacyAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected *types.LegacyAnalysisResult, got %T", data)
	}

	w := &markdownWriter{}
	w.title("자기소개서 분석 결과 (v1)")
	writeLegacy(w, result)
	return w.String(), nil
}

func (lmf *LegacyMarkdownFormatter) SupportedType() string {
	return "LegacyAnalysisResult"
}
