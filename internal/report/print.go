package report

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"essaylens/internal/present"
	"essaylens/internal/types"
)

// PrintRootID is the element the exporter rasterizes.
const PrintRootID = "print-root"

const (
	avoidBreak = "break-inside:avoid;page-break-inside:avoid;"
	pageBreak  = "break-before:page;page-break-before:always;"
)

type printWriter func(p *printer, r *types.AnalysisResult)

var printWriters = map[string]printWriter{
	"overall":             printOverall,
	"organization":        printOrganization,
	"warnings":            printWarnings,
	"strengths":           printStrengths,
	"improvements":        printImprovements,
	"keywords":            printKeywords,
	"core-values":         printCoreValues,
	"ncs":                 printNCS,
	"skill-match":         printSkillMatch,
	"past-questions":      printPastQuestions,
	"similar-questions":   printSimilarQuestions,
	"interview-detail":    printInterviewDetail,
	"interview-questions": printInterviewQuestions,
	"model-answer":        printModelAnswer,
}

type printer struct {
	b strings.Builder
}

func (p *printer) raw(s string) {
	p.b.WriteString(s)
}

func (p *printer) rawf(format string, args ...any) {
	fmt.Fprintf(&p.b, format, args...)
}

func (p *printer) text(s string) {
	p.b.WriteString(html.EscapeString(s))
}

func (p *printer) rich(s string) {
	p.b.WriteString(string(present.RichText(s)))
}

func cardStyle(tone present.Tone) string {
	t := present.Tokens
	border := t.Line
	background := t.Surface
	if tone.Border != "" {
		border = tone.Border
		background = tone.Background
	}
	return fmt.Sprintf("%sborder:1px solid %s;border-left:4px solid %s;background:%s;border-radius:%s;padding:10px 14px;margin:8px 0;",
		avoidBreak, t.Line, border, background, t.Radius)
}

func boxStyle() string {
	t := present.Tokens
	return fmt.Sprintf("%sborder:1px solid %s;border-radius:%s;padding:10px 14px;margin:8px 0;", avoidBreak, t.Line, t.Radius)
}

func chipStyle(tone present.Tone) string {
	return fmt.Sprintf("display:inline-block;margin:2px 4px 2px 0;padding:1px 8px;border-radius:999px;font-size:12px;color:%s;background:%s;border:1px solid %s;",
		tone.Color, tone.Background, tone.Border)
}

func (p *printer) badge(tone present.Tone, s string) {
	p.chip("chip", tone, s)
}

// chip renders s as a pill carrying the same class as the interactive page.
func (p *printer) chip(class string, tone present.Tone, s string) {
	p.rawf(`<span class="%s" style="%s">`, class, chipStyle(tone))
	p.text(s)
	p.raw(`</span>`)
}

func (p *printer) scoreBadge(score int) {
	p.chip("chip "+present.ScoreClass(score), present.BandTone(score), present.FormatScore(score, 10))
}

// card opens a bordered card in the given tone.
func (p *printer) card(class string, tone present.Tone) {
	p.rawf(`<div class="card%s" style="%s">`, class, cardStyle(tone))
}

// list renders items as inline chips, or "없음" when empty.
func (p *printer) list(items []string, class string, tone present.Tone) {
	if len(items) == 0 {
		p.none()
		return
	}
	for _, item := range items {
		p.chip(class, tone, item)
	}
}

func (p *printer) none() {
	p.rawf(`<span style="color:%s;">%s</span>`, present.Tokens.Muted, present.LabelNone)
}

func (p *printer) labelled(label string) {
	p.rawf(`<strong style="margin-right:6px;">%s</strong>`, html.EscapeString(label))
}

func neutralTone() present.Tone {
	t := present.Tokens
	return present.Tone{Color: t.Text, Background: t.Page, Border: t.Line}
}

// RenderPrint renders the self-contained A4 print document for result.
func RenderPrint(result *types.AnalysisResult, opts Options) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to print")
	}
	t := present.Tokens
	p := &printer{}

	p.raw(`<!DOCTYPE html><html lang="ko"><head><meta charset="utf-8"><title>`)
	p.text(opts.title())
	p.raw(`</title></head>`)
	p.rawf(`<body style="margin:0;width:794px;background:#ffffff;color:%s;font-family:%s;font-size:12px;line-height:1.55;-webkit-print-color-adjust:exact;print-color-adjust:exact;">`,
		t.Text, t.FontFamily)
	p.rawf(`<div id="%s" style="width:210mm;box-sizing:border-box;padding:0 4mm;">`, PrintRootID)
	p.rawf(`<header style="border-bottom:2px solid %s;margin-bottom:12px;padding-bottom:6px;"><h1 style="font-size:20px;margin:0;">`, t.Primary)
	p.text(opts.title())
	p.raw(`</h1></header>`)

	for _, s := range VisibleSections(result) {
		write, ok := printWriters[s.ID]
		if !ok {
			return nil, fmt.Errorf("no print layout for section %s", s.ID)
		}
		style := "margin:0 0 14px;"
		if s.ID == "model-answer" {
			style = pageBreak + style
		}
		p.rawf(`<section data-section="%s" style="%s">`, s.ID, style)
		p.rawf(`<h2 style="font-size:15px;margin:0 0 6px;color:%s;">%s `, t.Primary, s.Icon)
		p.text(s.Title)
		if badge := sectionBadge(s.ID, result); badge != "" {
			p.raw(" ")
			p.badge(neutralTone(), badge)
		}
		p.raw(`</h2>`)
		write(p, result)
		p.raw(`</section>`)
	}

	p.raw(`</div></body></html>`)
	return []byte(p.b.String()), nil
}

func printOverall(p *printer, r *types.AnalysisResult) {
	tone := present.TierTone(r.OverallScore)
	p.card(" "+present.TierClass(r.OverallScore), tone)
	p.rawf(`<div style="font-size:22px;font-weight:700;color:%s;">%s %s `, tone.Color,
		present.GradeIcon(r.OverallGrade), html.EscapeString(present.FormatScore(r.OverallScore, 100)))
	p.text(r.OverallGrade)
	p.raw(`</div>`)
	if r.OverallSummary != "" {
		p.raw(`<p style="margin:6px 0;">`)
		p.rich(r.OverallSummary)
		p.raw(`</p>`)
	}
	lc := r.LengthCheck
	p.raw(`<p style="margin:4px 0;">`)
	p.labelled(present.LabelLength)
	p.text(fmt.Sprintf("%s / %s (%s)", present.FormatCharCount(float64(lc.Current)),
		present.FormatCharCount(float64(lc.Max)), present.FormatPercent(lc.Percentage)))
	if lc.Status != "" {
		p.raw(" ")
		p.badge(neutralTone(), lc.Status)
	}
	p.raw(`</p></div>`)
}

func printOrganization(p *printer, r *types.AnalysisResult) {
	org := r.OrganizationInfo
	p.rawf(`<div style="%s">`, boxStyle())
	p.raw(`<div style="font-size:14px;font-weight:700;">`)
	p.text(org.Name)
	p.raw(`</div>`)
	if org.Website != "" {
		p.rawf(`<div style="color:%s;">`, present.Tokens.Muted)
		p.text(org.Website)
		p.raw(`</div>`)
	}
	if org.TalentImage != "" {
		p.raw(`<p style="margin:4px 0;">`)
		p.labelled("인재상")
		p.rich(org.TalentImage)
		p.raw(`</p>`)
	}
	p.raw(`<p style="margin:4px 0;">`)
	p.labelled("핵심가치")
	p.list(org.CoreValues, "chip", neutralTone())
	p.raw(`</p><p style="margin:4px 0;">`)
	p.labelled("최근 소식")
	if len(org.RecentNews) == 0 {
		p.none()
	} else {
		titles := make([]string, len(org.RecentNews))
		for i, n := range org.RecentNews {
			titles[i] = n.Title
			if n.Date != "" {
				titles[i] += " (" + n.Date + ")"
			}
		}
		p.text(strings.Join(titles, " · "))
	}
	p.raw(`</p><p style="margin:4px 0;">`)
	p.labelled("면접 키워드")
	p.list(org.InterviewKeywords, "chip", neutralTone())
	p.raw(`</p>`)
	if len(org.RecruitmentProcess) > 0 {
		p.raw(`<p style="margin:4px 0;">`)
		p.labelled("채용 절차")
		p.text(strings.Join(org.RecruitmentProcess, " → "))
		p.raw(`</p>`)
	}
	p.raw(`</div>`)
}

func printWarnings(p *printer, r *types.AnalysisResult) {
	if len(r.Warnings) == 0 {
		p.rawf(`<p style="%scolor:%s;">✅ %s</p>`, avoidBreak, present.Tokens.Found.Color, present.LabelNoIssues)
		return
	}
	for _, w := range r.Warnings {
		p.card(" "+present.SeverityClass(w.Severity), present.SeverityTone(w.Severity))
		p.rawf(`<div><span>%s</span> <strong>`, present.WarningIcon(w.Type))
		p.text(w.Message)
		p.raw(`</strong></div>`)
		if w.DetectedText != "" {
			p.rawf(`<div style="color:%s;">"`, present.Tokens.Muted)
			p.text(w.DetectedText)
			p.raw(`"</div>`)
		}
		if w.Suggestion != "" {
			p.raw(`<div>💡 `)
			p.rich(w.Suggestion)
			p.raw(`</div>`)
		}
		p.raw(`</div>`)
	}
}

func printStrengths(p *printer, r *types.AnalysisResult) {
	for _, s := range r.Strengths {
		p.card("", present.BandTone(s.Score))
		p.raw(`<div><strong>`)
		p.text(s.Title)
		p.raw(`</strong> `)
		p.scoreBadge(s.Score)
		p.raw(`</div>`)
		if s.Quote != "" {
			p.rawf(`<div style="color:%s;">"`, present.Tokens.Muted)
			p.text(s.Quote)
			p.raw(`"</div>`)
		}
		p.raw(`<div>`)
		p.rich(s.Evaluation)
		p.raw(`</div></div>`)
	}
}

func printImprovements(p *printer, r *types.AnalysisResult) {
	for _, imp := range r.Improvements {
		p.card("", present.BandTone(imp.Score))
		p.raw(`<div><strong>`)
		p.text(imp.Title)
		p.raw(`</strong> `)
		p.scoreBadge(imp.Score)
		p.raw(`</div><div>`)
		p.rich(imp.Problem)
		p.raw(`</div>`)
		if imp.CurrentText != "" {
			p.rawf(`<div style="color:%s;">`, present.Tokens.Muted)
			p.labelled(present.LabelCurrentText)
			p.text(imp.CurrentText)
			p.raw(`</div>`)
		}
		p.rawf(`<div style="color:%s;">`, present.Tokens.Found.Color)
		p.labelled(present.LabelImprovedText)
		p.text(imp.ImprovedText)
		p.raw(`</div></div>`)
	}
}

func printKeywords(p *printer, r *types.AnalysisResult) {
	ka := r.KeywordAnalysis
	p.rawf(`<div style="%s">`, boxStyle())
	p.raw(`<p style="margin:2px 0;">`)
	p.labelled(present.LabelMatchRate)
	p.text(present.FormatPercent(ka.MatchRate))
	p.raw(`</p><p style="margin:2px 0;">`)
	p.labelled(present.LabelFound)
	p.list(ka.FoundKeywords, "chip found", present.Tokens.Found)
	p.raw(`</p><p style="margin:2px 0;">`)
	p.labelled(present.LabelMissing)
	p.list(ka.MissingKeywords, "chip missing", present.Tokens.Missing)
	p.raw(`</p></div>`)
}

func foundMark(found bool) string {
	if found {
		return "✅"
	}
	return "❌"
}

func (p *printer) evidence(evidence, suggestion string) {
	if evidence != "" {
		p.rawf(`<div style="color:%s;">`, present.Tokens.Muted)
		p.labelled(present.LabelEvidence)
		p.text(evidence)
		p.raw(`</div>`)
	}
	if suggestion != "" {
		p.raw(`<div>💡 `)
		p.rich(suggestion)
		p.raw(`</div>`)
	}
}

func printCoreValues(p *printer, r *types.AnalysisResult) {
	for _, cv := range r.CoreValueScores {
		p.card("", present.BandTone(cv.Score))
		p.rawf(`<div>%s <strong>`, foundMark(cv.Found))
		p.text(cv.Value)
		p.raw(`</strong> `)
		p.scoreBadge(cv.Score)
		p.raw(`</div>`)
		p.evidence(cv.Evidence, cv.Suggestion)
		p.raw(`</div>`)
	}
}

func printNCS(p *printer, r *types.AnalysisResult) {
	for _, ncs := range r.NCSCompetencyScores {
		p.card("", present.BandTone(ncs.Score))
		p.rawf(`<div>%s <strong>`, foundMark(ncs.Found))
		p.text(ncs.Name)
		p.raw(`</strong> `)
		if ncs.Importance == "required" {
			p.badge(neutralTone(), present.LabelRequired)
		}
		p.scoreBadge(ncs.Score)
		p.raw(`</div>`)
		p.evidence(ncs.Evidence, ncs.Suggestion)
		p.raw(`</div>`)
	}
}

func printSkillMatch(p *printer, r *types.AnalysisResult) {
	m := r.PositionSkillMatch
	t := present.Tokens
	p.rawf(`<div style="%s">`, boxStyle())
	p.raw(`<p style="margin:2px 0;">`)
	p.labelled(present.LabelMatchRate)
	p.text(present.FormatPercent(m.OverallMatchRate))
	p.raw(`</p>`)
	rows := []struct {
		label            string
		matched, missing []string
	}{
		{"전공", m.MatchedMajors, m.MissingMajors},
		{"자격증", m.MatchedCertifications, m.MissingCertifications},
		{"기술", m.MatchedSkills, m.MissingSkills},
	}
	p.raw(`<table style="width:100%;border-collapse:collapse;">`)
	for _, row := range rows {
		p.rawf(`<tr><th style="text-align:left;width:60px;padding:3px;border-top:1px solid %s;">%s</th>`, t.Line, row.label)
		p.rawf(`<td style="padding:3px;border-top:1px solid %s;">`, t.Line)
		p.list(row.matched, "chip found", t.Found)
		p.rawf(`</td><td style="padding:3px;border-top:1px solid %s;">`, t.Line)
		p.list(row.missing, "chip missing", t.Missing)
		p.raw(`</td></tr>`)
	}
	p.raw(`</table>`)
	if m.Recommendation != "" {
		p.raw(`<p style="margin:4px 0;">💡 `)
		p.rich(m.Recommendation)
		p.raw(`</p>`)
	}
	p.raw(`</div>`)
}

func yearHalf(year int, half string) string {
	s := strconv.Itoa(year)
	if half != "" {
		s += " " + half
	}
	return s
}

func printPastQuestions(p *printer, r *types.AnalysisResult) {
	p.raw(`<ul style="margin:0;padding-left:18px;">`)
	for _, q := range r.PastQuestions {
		p.rawf(`<li style="%s">`, avoidBreak)
		p.rawf(`<span style="color:%s;">`, present.Tokens.Muted)
		p.text(yearHalf(q.Year, q.Half))
		p.raw(`</span> `)
		p.text(q.Question)
		if q.CharLimit > 0 {
			p.text(" (" + present.FormatCharCount(float64(q.CharLimit)) + ")")
		}
		if q.IsPrediction {
			p.raw(" ")
			p.badge(neutralTone(), present.LabelPrediction)
		}
		p.raw(`</li>`)
	}
	p.raw(`</ul>`)
}

func printSimilarQuestions(p *printer, r *types.AnalysisResult) {
	for _, q := range r.SimilarQuestions {
		p.card("", present.Tone{})
		p.rawf(`<div><span style="color:%s;">`, present.Tokens.Muted)
		p.text(yearHalf(q.Year, q.Half))
		p.raw(`</span> <strong>`)
		p.text(q.Question)
		p.raw(`</strong> `)
		p.badge(neutralTone(), present.FormatSimilarity(q.Similarity))
		p.raw(`</div>`)
		if q.CharLimit > 0 {
			p.rawf(`<div style="color:%s;">%s</div>`, present.Tokens.Muted,
				html.EscapeString(present.FormatCharCount(float64(q.CharLimit))))
		}
		p.raw(`<div>`)
		p.list(q.MatchedKeywords, "chip", neutralTone())
		p.raw(`</div></div>`)
	}
}

func printInterviewDetail(p *printer, r *types.AnalysisResult) {
	d := r.InterviewDetail
	p.rawf(`<div style="%s">`, boxStyle())
	fields := []struct{ label, value string }{
		{"면접 형식", d.FormatType},
		{"전형 단계", strings.Join(d.Stages, " → ")},
		{"소요 시간", d.Duration},
		{"난이도", d.Difficulty},
		{"합격률", d.PassRate},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		p.raw(`<p style="margin:2px 0;">`)
		p.labelled(f.label)
		p.text(f.value)
		p.raw(`</p>`)
	}
	if len(d.FrequentQuestions) > 0 {
		p.raw(`<ul style="margin:4px 0;padding-left:18px;">`)
		for _, q := range d.FrequentQuestions {
			p.rawf(`<li style="%s">`, avoidBreak)
			if q.Frequency == "high" {
				p.badge(neutralTone(), present.LabelFrequent)
				p.raw(" ")
			}
			p.raw(`<strong>`)
			p.text(q.Question)
			p.raw(`</strong>`)
			if q.Category != "" {
				p.rawf(` <span style="color:%s;">`, present.Tokens.Muted)
				p.text(q.Category)
				p.raw(`</span>`)
			}
			if q.Tips != "" {
				p.raw(`<br>💡 `)
				p.rich(q.Tips)
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
	}
	p.raw(`</div>`)
}

func printInterviewQuestions(p *printer, r *types.AnalysisResult) {
	for i, q := range r.InterviewQuestions {
		p.card("", present.Tone{})
		p.rawf(`<div><strong>Q%d. `, i+1)
		p.text(q.Question)
		p.raw(`</strong>`)
		if q.IsFrequent {
			label := present.LabelFrequent
			if len(q.Years) > 0 {
				label += " " + joinYears(q.Years)
			}
			p.raw(" ")
			p.badge(neutralTone(), label)
		}
		p.raw(`</div><div>`)
		p.labelled(present.LabelAnswerTips)
		p.rich(q.AnswerTips)
		p.raw(`</div>`)
		if q.SampleAnswer != "" {
			p.rawf(`<div style="color:%s;">`, present.Tokens.Muted)
			p.labelled(present.LabelSampleAnswer)
			p.text(q.SampleAnswer)
			p.raw(`</div>`)
		}
		p.raw(`</div>`)
	}
}

func printModelAnswer(p *printer, r *types.AnalysisResult) {
	t := present.Tokens
	p.rawf(`<p style="margin:0 0 4px;color:%s;">`, t.Muted)
	p.text(present.FormatCharCount(float64(r.ModelAnswerLength)))
	p.raw(`</p>`)
	p.rawf(`<div style="white-space:pre-wrap;background:%s;border-radius:%s;padding:12px;">`, t.Page, t.Radius)
	p.text(r.ModelAnswer)
	p.raw(`</div>`)
}
