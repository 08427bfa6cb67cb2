package report

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"essaylens/internal/present"
	"essaylens/internal/types"
)

var labels = map[string]string{
	"none":         present.LabelNone,
	"noIssues":     present.LabelNoIssues,
	"found":        present.LabelFound,
	"missing":      present.LabelMissing,
	"matchRate":    present.LabelMatchRate,
	"length":       present.LabelLength,
	"current":      present.LabelCurrentText,
	"improved":     present.LabelImprovedText,
	"tips":         present.LabelAnswerTips,
	"sample":       present.LabelSampleAnswer,
	"frequent":     present.LabelFrequent,
	"prediction":   present.LabelPrediction,
	"required":     present.LabelRequired,
	"copy":         present.LabelCopy,
	"copied":       present.LabelCopied,
	"export":       present.LabelExport,
	"exporting":    present.LabelExporting,
	"scrollTop":    present.LabelScrollTop,
	"empty":        present.LabelEmptyReport,
	"copyFailed":   present.MessageCopyFailed,
	"exportFailed": present.MessageExportError,
}

var funcs = template.FuncMap{
	"rich":       present.RichText,
	"tierClass":  present.TierClass,
	"gradeIcon":  present.GradeIcon,
	"sevClass":   present.SeverityClass,
	"warnIcon":   present.WarningIcon,
	"scoreClass": present.ScoreClass,
	"score":      present.FormatScore,
	"percent":    present.FormatPercent,
	"similarity": present.FormatSimilarity,
	"chars":      present.FormatChars,
	"join":       strings.Join,
	"years":      joinYears,
	"label": func(key string) string {
		return labels[key]
	},
}

var (
	components = template.Must(template.New("components").Funcs(funcs).Parse(componentTemplates))
	page       = template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))
)

type renderedSection struct {
	ID    string
	Title string
	Icon  string
	Badge string
	Body  template.HTML
}

type pageData struct {
	Title        string
	CSS          template.CSS
	ServerBacked bool
	ExportURL    string
	Revision     string
	Empty        bool
	Sections     []renderedSection
	ModelAnswer  string
	Threshold    int
	ConfirmMs    int64
}

// RenderInteractive renders the full interactive report page for result.
// A nil result renders the empty state.
func RenderInteractive(result *types.AnalysisResult, opts Options) ([]byte, error) {
	data := pageData{
		Title:        opts.title(),
		CSS:          template.CSS(present.Stylesheet()),
		ServerBacked: opts.ServerBacked,
		ExportURL:    opts.exportURL(),
		Empty:        result == nil,
		Threshold:    present.ScrollTopThreshold,
		ConfirmMs:    present.CopyConfirmDuration.Milliseconds(),
	}

	if result != nil {
		data.Revision = Revision(result)
		data.ModelAnswer = result.ModelAnswer
		for _, s := range VisibleSections(result) {
			body, err := renderComponent(s.ID, result)
			if err != nil {
				return nil, err
			}
			data.Sections = append(data.Sections, renderedSection{
				ID:    s.ID,
				Title: s.Title,
				Icon:  s.Icon,
				Badge: sectionBadge(s.ID, result),
				Body:  body,
			})
		}
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	return buf.Bytes(), nil
}

// Revision identifies the content of result. Pages carry it so an export
// request can tell whether the page still shows the server's result.
func Revision(result *types.AnalysisResult) string {
	if result == nil {
		return ""
	}
	data, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func renderComponent(id string, result *types.AnalysisResult) (template.HTML, error) {
	var buf bytes.Buffer
	if err := components.ExecuteTemplate(&buf, id, result); err != nil {
		return "", fmt.Errorf("failed to render section %s: %w", id, err)
	}
	return template.HTML(buf.String()), nil
}

func sectionBadge(id string, result *types.AnalysisResult) string {
	if id == "warnings" && len(result.Warnings) > 0 {
		return present.CountBadge(len(result.Warnings))
	}
	return ""
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}
