package report

import (
	"os"
	"strings"
	"testing"

	"essaylens/internal/present"
	"essaylens/internal/types"
)

func loadFixture(t testing.TB) *types.AnalysisResult {
	t.Helper()
	data, err := os.ReadFile("../types/testdata/full_result.json")
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	result, err := types.DecodeResult(data)
	if err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}
	return result
}

func minimalResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		OverallScore: 42,
		OverallGrade: "보통",
		LengthCheck:  types.LengthCheck{Current: 300, Max: 1000, Percentage: 30, Status: "short"},
	}
}

func TestSectionOrder(t *testing.T) {
	expected := []string{
		"overall", "organization", "warnings", "strengths", "improvements", "keywords",
		"core-values", "ncs", "skill-match", "past-questions", "similar-questions",
		"interview-detail", "interview-questions", "model-answer",
	}
	if len(Sections) != len(expected) {
		t.Fatalf("Expected %d sections, got %d", len(expected), len(Sections))
	}
	for i, id := range expected {
		if Sections[i].ID != id {
			t.Errorf("Section %d: expected %s, got %s", i, id, Sections[i].ID)
		}
	}
}

func TestEverySectionHasBothLayouts(t *testing.T) {
	for _, s := range Sections {
		if components.Lookup(s.ID) == nil {
			t.Errorf("Section %s has no interactive component", s.ID)
		}
		if _, ok := printWriters[s.ID]; !ok {
			t.Errorf("Section %s has no print layout", s.ID)
		}
	}
}

func TestVisibleSections(t *testing.T) {
	tests := []struct {
		name     string
		result   *types.AnalysisResult
		expected []string
	}{
		{"minimal", minimalResult(), []string{"overall", "keywords"}},
		{"empty warnings still shown", func() *types.AnalysisResult {
			r := minimalResult()
			r.Warnings = []types.Warning{}
			return r
		}(), []string{"overall", "warnings", "keywords"}},
		{"unnamed organization hidden", func() *types.AnalysisResult {
			r := minimalResult()
			r.OrganizationInfo = &types.OrganizationInfo{CoreValues: []string{"혁신"}}
			r.InterviewDetail = &types.InterviewDetail{}
			r.PositionSkillMatch = &types.PositionSkillMatch{}
			return r
		}(), []string{"overall", "keywords"}},
		{"model answer", func() *types.AnalysisResult {
			r := minimalResult()
			r.ModelAnswer = "답변"
			return r
		}(), []string{"overall", "keywords", "model-answer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible := VisibleSections(tt.result)
			if len(visible) != len(tt.expected) {
				t.Fatalf("Expected %d sections, got %d", len(tt.expected), len(visible))
			}
			for i, id := range tt.expected {
				if visible[i].ID != id {
					t.Errorf("Expected %s at %d, got %s", id, i, visible[i].ID)
				}
			}
		})
	}

	if VisibleSections(nil) != nil {
		t.Error("Expected no sections for nil result")
	}
}

func TestRenderInteractiveFull(t *testing.T) {
	result := loadFixture(t)
	out, err := RenderInteractive(result, Options{Title: "NHIS 분석"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		`id="report-root"`,
		`data-floating`,
		`<title>NHIS 분석</title>`,
		present.CountBadge(2),
		"540자",
		"<strong>구체적 경험</strong>",
		"window.essaylens = Object.freeze",
		"severity-high",
		"severity-low",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}

	last := -1
	for _, s := range VisibleSections(result) {
		idx := strings.Index(page, `id="section-`+s.ID+`"`)
		if idx < 0 {
			t.Fatalf("Section %s missing from page", s.ID)
		}
		if idx < last {
			t.Errorf("Section %s out of order", s.ID)
		}
		last = idx
	}
}

func TestRenderInteractiveWarnings(t *testing.T) {
	r := minimalResult()
	r.Warnings = []types.Warning{}
	out, err := RenderInteractive(r, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, present.LabelNoIssues) {
		t.Error("Expected no-issues affirmation for empty warnings")
	}
	if strings.Contains(page, present.CountBadge(0)) {
		t.Error("Empty warnings must not show a count badge")
	}

	r.Warnings = []types.Warning{
		{Type: "typo", Severity: "urgent", Message: "첫 번째"},
		{Type: "missing_result", Severity: "low", Message: "두 번째"},
		{Type: "blind_violation", Severity: "high", Message: "세 번째"},
	}
	out, err = RenderInteractive(r, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	page = string(out)
	if !strings.Contains(page, present.CountBadge(3)) {
		t.Error("Expected 3개 badge")
	}
	first, second, third := strings.Index(page, "첫 번째"), strings.Index(page, "두 번째"), strings.Index(page, "세 번째")
	if !(first < second && second < third) {
		t.Error("Warnings must render in input order")
	}
	if !strings.Contains(page, `class="card severity-medium"`) {
		t.Error("Unknown severity should fall back to medium")
	}
}

func TestRenderInteractiveEscapesText(t *testing.T) {
	r := minimalResult()
	r.Warnings = []types.Warning{{Type: "x", Severity: "low", Message: "<script>alert(1)</script>"}}
	r.ModelAnswer = "</script><b>answer</b>"
	out, err := RenderInteractive(r, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	page := string(out)
	if strings.Contains(page, "<script>alert(1)") {
		t.Error("Warning text must be escaped")
	}
	if strings.Contains(page, "</script><b>") {
		t.Error("Model answer must be escaped")
	}
}

func TestRenderInteractiveEmptyState(t *testing.T) {
	out, err := RenderInteractive(nil, Options{ServerBacked: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, present.LabelEmptyReport) {
		t.Error("Expected empty state")
	}
	if !strings.Contains(page, `data-source="server"`) {
		t.Error("Expected server-backed marker")
	}
}

func TestRenderPrintFull(t *testing.T) {
	out, err := RenderPrint(loadFixture(t), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	doc := string(out)

	for _, want := range []string{
		`id="print-root"`,
		"width:210mm",
		"width:794px",
		present.DefaultDocumentTitle,
		"78/100",
		"8/10",
		"912.0자",
		"540.0자",
		"66.7%",
		"<strong>구체적 경험</strong>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expected print document to contain %q", want)
		}
	}

	if n := strings.Count(doc, "break-before:page"); n != 1 {
		t.Errorf("Expected exactly one forced page break, got %d", n)
	}
	breakAt := strings.Index(doc, "break-before:page")
	answerAt := strings.Index(doc, `data-section="model-answer"`)
	if breakAt < 0 || answerAt < 0 || breakAt > answerAt+len(`data-section="model-answer" style="`) {
		t.Error("Page break must sit on the model answer section")
	}
	if strings.Contains(doc, "<button") || strings.Contains(doc, "<script") {
		t.Error("Print document must not carry interactive controls")
	}
	if !strings.Contains(doc, "break-inside:avoid") {
		t.Error("Expected do-not-split hints")
	}
}

func TestRenderPrintEmptyLists(t *testing.T) {
	r := minimalResult()
	r.Warnings = []types.Warning{}
	out, err := RenderPrint(r, Options{Title: "빈 결과"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	doc := string(out)
	if strings.Count(doc, present.LabelNone) < 2 {
		t.Error("Expected 없음 for empty found and missing keywords")
	}
	if !strings.Contains(doc, present.LabelNoIssues) {
		t.Error("Expected no-issues affirmation")
	}
	if strings.Contains(doc, "break-before:page") {
		t.Error("No page break expected without a model answer")
	}
}

func TestRenderPrintNil(t *testing.T) {
	if _, err := RenderPrint(nil, Options{}); err == nil {
		t.Error("Expected error for nil result")
	}
}

func TestRenderersAgreeOnSections(t *testing.T) {
	result := loadFixture(t)
	interactive, err := RenderInteractive(result, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	printed, err := RenderPrint(result, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, s := range Sections {
		inPage := strings.Contains(string(interactive), `id="section-`+s.ID+`"`)
		inPrint := strings.Contains(string(printed), `data-section="`+s.ID+`"`)
		if inPage != inPrint {
			t.Errorf("Section %s: interactive=%v print=%v", s.ID, inPage, inPrint)
		}
	}
}

func TestRevision(t *testing.T) {
	result := loadFixture(t)
	rev := Revision(result)
	if len(rev) != 16 {
		t.Fatalf("Expected 16 hex digits, got %q", rev)
	}
	if Revision(loadFixture(t)) != rev {
		t.Error("Expected equal results to share a revision")
	}
	changed := loadFixture(t)
	changed.OverallScore++
	if Revision(changed) == rev {
		t.Error("Expected a changed result to get a new revision")
	}
	if Revision(nil) != "" {
		t.Error("Expected no revision without a result")
	}

	page, err := RenderInteractive(result, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(page), `data-revision="`+rev+`"`) {
		t.Error("Expected the page to carry the result revision")
	}
	if !strings.Contains(string(page), "html: captureMarkup()") {
		t.Error("Expected export requests to always carry the page markup")
	}

	empty, err := RenderInteractive(nil, Options{ServerBacked: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(string(empty), "data-revision") {
		t.Error("Empty state must not claim a revision")
	}
}

func TestRenderersShowSimilarityAsPercent(t *testing.T) {
	result := loadFixture(t)
	renderers := map[string]func(*types.AnalysisResult, Options) ([]byte, error){
		"interactive": RenderInteractive,
		"print":       RenderPrint,
	}
	for name, render := range renderers {
		t.Run(name, func(t *testing.T) {
			out, err := render(result, Options{})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(string(out), "82.0%") {
				t.Error("Expected similarity 82 to render as 82.0%")
			}
			if strings.Contains(string(out), "8200.0%") {
				t.Error("Similarity must not be scaled a second time")
			}
		})
	}
}

func scenarioResult(answerRunes, answerLength int) *types.AnalysisResult {
	return &types.AnalysisResult{
		OverallScore: 85,
		OverallGrade: "우수",
		Strengths:    []types.Strength{},
		Improvements: []types.Improvement{{Title: "X", Score: 4, Problem: "P", ImprovedText: "I"}},
		KeywordAnalysis: types.KeywordAnalysis{
			FoundKeywords:   []string{"리더십"},
			MissingKeywords: []string{"도전정신"},
			MatchRate:       50,
		},
		ModelAnswer:       strings.Repeat("가", answerRunes),
		ModelAnswerLength: answerLength,
	}
}

// sectionHTML returns the markup from marker up to the end of its section.
func sectionHTML(doc, marker string) string {
	start := strings.Index(doc, marker)
	if start < 0 {
		return ""
	}
	rest := doc[start:]
	if end := strings.Index(rest, "</section>"); end >= 0 {
		return rest[:end]
	}
	return rest
}

func TestRenderScenario(t *testing.T) {
	renderers := []struct {
		name   string
		render func(*types.AnalysisResult, Options) ([]byte, error)
		marker func(id string) string
		chars  func(n int) string
	}{
		{"interactive", RenderInteractive, func(id string) string { return `id="section-` + id + `"` }, present.FormatChars},
		{"print", RenderPrint, func(id string) string { return `data-section="` + id + `"` },
			func(n int) string { return present.FormatCharCount(float64(n)) }},
	}
	results := []struct {
		name   string
		runes  int
		length int
	}{
		{"length matches answer", 120, 120},
		{"length taken as given", 120, 95},
	}

	for _, r := range renderers {
		for _, tc := range results {
			t.Run(r.name+"/"+tc.name, func(t *testing.T) {
				out, err := r.render(scenarioResult(tc.runes, tc.length), Options{})
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				doc := string(out)

				if strings.Contains(doc, r.marker("strengths")) || strings.Contains(doc, present.TitleStrengths) {
					t.Error("Expected the strengths section to be omitted")
				}

				improvements := sectionHTML(doc, r.marker("improvements"))
				if n := strings.Count(improvements, `class="card`); n != 1 {
					t.Errorf("Expected 1 improvement card, got %d", n)
				}
				if n := strings.Count(improvements, "score-low"); n != 1 {
					t.Errorf("Expected 1 score-low tag, got %d", n)
				}

				keywords := sectionHTML(doc, r.marker("keywords"))
				if n := strings.Count(keywords, `class="chip found"`); n != 1 {
					t.Errorf("Expected 1 found keyword, got %d", n)
				}
				if n := strings.Count(keywords, `class="chip missing"`); n != 1 {
					t.Errorf("Expected 1 missing keyword, got %d", n)
				}

				answer := sectionHTML(doc, r.marker("model-answer"))
				if want := r.chars(tc.length); !strings.Contains(answer, want) {
					t.Errorf("Expected model answer section to show %s", want)
				}
				if tc.length != tc.runes && strings.Contains(answer, r.chars(tc.runes)) {
					t.Error("Model answer length must not be recounted from the text")
				}
			})
		}
	}
}

func BenchmarkRenderPrint(b *testing.B) {
	result := loadFixture(b)
	for b.Loop() {
		if _, err := RenderPrint(result, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderInteractive(b *testing.B) {
	result := loadFixture(b)
	for b.Loop() {
		if _, err := RenderInteractive(result, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
