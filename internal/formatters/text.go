package formatters

import (
	"fmt"
	"strings"

	"essaylens/internal/present"
	"essaylens/internal/types"

	"github.com/charmbracelet/lipgloss"
)

type textStyles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	sub     lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
}

func newTextStyles() textStyles {
	return textStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(present.Tokens.Primary)),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		sub:     lipgloss.NewStyle().Bold(true),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color(present.Tokens.Muted)),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// textWriter renders sections for a terminal
type textWriter struct {
	b      strings.Builder
	styles textStyles
}

func newTextWriter() *textWriter {
	return &textWriter{styles: newTextStyles()}
}

func (w *textWriter) title(text string) {
	w.b.WriteString(w.styles.title.Render("=== " + text + " ==="))
	w.b.WriteString("\n")
}

func (w *textWriter) heading(text string) {
	w.b.WriteString("\n")
	w.b.WriteString(w.styles.heading.Render(text))
	w.b.WriteString("\n")
	w.b.WriteString(w.styles.dim.Render(strings.Repeat("─", 40)))
	w.b.WriteString("\n")
}

func (w *textWriter) subheading(text string) {
	w.b.WriteString(w.styles.sub.Render(text))
	w.b.WriteString("\n")
}

func (w *textWriter) field(label, value string) {
	w.b.WriteString(w.styles.label.Render(label + ":"))
	w.b.WriteString(" ")
	w.b.WriteString(value)
	w.b.WriteString("\n")
}

func (w *textWriter) bullet(text string) {
	w.b.WriteString("- ")
	w.b.WriteString(text)
	w.b.WriteString("\n")
}

func (w *textWriter) paragraph(text string) {
	w.b.WriteString(text)
	w.b.WriteString("\n")
}

func (w *textWriter) scored(text string, tone present.Tone) {
	w.b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tone.Border)).Render(text))
	w.b.WriteString("\n")
}

func (w *textWriter) String() string {
	return w.b.String()
}

// AnalysisTextFormatter handles terminal formatting for v2 analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected *types.AnalysisResult, got %T", data)
	}

	w := newTextWriter()
	w.title("자기소개서 분석 결과")
	writeSections(w, result)
	return w.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// LegacyTextFormatter handles text formatting for v1 analysis results
type LegacyTextFormatter struct{}

func (ltf *LegacyTextFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.LegacyAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected *types.LegacyAnalysisResult, got %T", data)
	}

	w := newTextWriter()
	w.title("자기소개서 분석 결과 (v1)")
	writeLegacy(w, result)
	return w.String(), nil
}

func (ltf *LegacyTextFormatter) SupportedType() string {
	return "LegacyAnalysisResult"
}
