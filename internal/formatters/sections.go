package formatters

import (
	"fmt"
	"strings"

	"essaylens/internal/present"
	"essaylens/internal/report"
	"essaylens/internal/types"
)

// sectionWriter is the output syntax of a plain-text rendering
type sectionWriter interface {
	title(text string)
	heading(text string)
	subheading(text string)
	field(label, value string)
	bullet(text string)
	paragraph(text string)
	scored(text string, tone present.Tone)
	String() string
}

// writeSections walks the visible report sections in display order so the
// text renderings agree with the html and print documents.
func writeSections(w sectionWriter, r *types.AnalysisResult) {
	for _, s := range report.VisibleSections(r) {
		w.heading(s.Icon + " " + s.Title)
		if fn, ok := sectionBodies[s.ID]; ok {
			fn(w, r)
		}
	}
}

var sectionBodies = map[string]func(sectionWriter, *types.AnalysisResult){
	"overall": func(w sectionWriter, r *types.AnalysisResult) {
		w.scored(fmt.Sprintf("%s %s · %s", present.GradeIcon(r.OverallGrade), r.OverallGrade, present.FormatScore(r.OverallScore, 100)), present.TierTone(r.OverallScore))
		if r.OverallSummary != "" {
			w.paragraph(plain(r.OverallSummary))
		}
		lc := r.LengthCheck
		w.field(present.LabelLength, fmt.Sprintf("%s / %s (%s, %s)",
			present.FormatChars(lc.Current), present.FormatChars(lc.Max), present.FormatPercent(lc.Percentage), lc.Status))
	},
	"organization": func(w sectionWriter, r *types.AnalysisResult) {
		o := r.OrganizationInfo
		w.subheading(o.Name)
		if o.Website != "" {
			w.field("웹사이트", o.Website)
		}
		if len(o.CoreValues) > 0 {
			w.field("핵심가치", strings.Join(o.CoreValues, ", "))
		}
		if o.TalentImage != "" {
			w.field("인재상", o.TalentImage)
		}
		if len(o.InterviewKeywords) > 0 {
			w.field("면접 키워드", strings.Join(o.InterviewKeywords, ", "))
		}
		if len(o.RecruitmentProcess) > 0 {
			w.field("채용 절차", strings.Join(o.RecruitmentProcess, " → "))
		}
		for _, n := range o.RecentNews {
			item := n.Title
			if n.Date != "" {
				item = n.Date + " " + item
			}
			w.bullet(item)
		}
	},
	"warnings": func(w sectionWriter, r *types.AnalysisResult) {
		if len(r.Warnings) == 0 {
			w.paragraph(present.LabelNoIssues)
			return
		}
		for _, warn := range r.Warnings {
			w.bullet(fmt.Sprintf("%s [%s] %s", present.WarningIcon(warn.Type), warn.Severity, warn.Message))
			if warn.DetectedText != "" {
				w.field("  발견된 표현", warn.DetectedText)
			}
			if warn.Suggestion != "" {
				w.field("  "+present.LabelSuggestion, warn.Suggestion)
			}
		}
	},
	"strengths": func(w sectionWriter, r *types.AnalysisResult) {
		for _, s := range r.Strengths {
			w.scored(fmt.Sprintf("%s (%s)", s.Title, present.FormatScore(s.Score, 10)), present.BandTone(s.Score))
			if s.Quote != "" {
				w.paragraph("“" + s.Quote + "”")
			}
			w.paragraph(plain(s.Evaluation))
		}
	},
	"improvements": func(w sectionWriter, r *types.AnalysisResult) {
		for _, imp := range r.Improvements {
			w.scored(fmt.Sprintf("%s (%s)", imp.Title, present.FormatScore(imp.Score, 10)), present.BandTone(imp.Score))
			w.paragraph(plain(imp.Problem))
			if imp.CurrentText != "" {
				w.field(present.LabelCurrentText, imp.CurrentText)
			}
			w.field(present.LabelImprovedText, imp.ImprovedText)
		}
	},
	"keywords": func(w sectionWriter, r *types.AnalysisResult) {
		k := r.KeywordAnalysis
		w.field(present.LabelMatchRate, present.FormatPercent(k.MatchRate))
		w.field(present.LabelFound, joinOrNone(k.FoundKeywords))
		w.field(present.LabelMissing, joinOrNone(k.MissingKeywords))
	},
	"core-values": func(w sectionWriter, r *types.AnalysisResult) {
		for _, cv := range r.CoreValueScores {
			w.scored(fmt.Sprintf("%s %s", cv.Value, present.FormatScore(cv.Score, 10)), present.BandTone(cv.Score))
			if cv.Evidence != "" {
				w.field("  "+present.LabelEvidence, cv.Evidence)
			}
			if cv.Suggestion != "" {
				w.field("  "+present.LabelSuggestion, cv.Suggestion)
			}
		}
	},
	"ncs": func(w sectionWriter, r *types.AnalysisResult) {
		for _, n := range r.NCSCompetencyScores {
			name := n.Name
			if n.Importance == "required" {
				name += " (" + present.LabelRequired + ")"
			}
			w.scored(fmt.Sprintf("%s %s", name, present.FormatScore(n.Score, 10)), present.BandTone(n.Score))
			if n.Evidence != "" {
				w.field("  "+present.LabelEvidence, n.Evidence)
			}
			if n.Suggestion != "" {
				w.field("  "+present.LabelSuggestion, n.Suggestion)
			}
		}
	},
	"skill-match": func(w sectionWriter, r *types.AnalysisResult) {
		m := r.PositionSkillMatch
		w.field(present.LabelMatchRate, present.FormatPercent(m.OverallMatchRate))
		w.field("전공", matchLine(m.MatchedMajors, m.MissingMajors))
		w.field("자격증", matchLine(m.MatchedCertifications, m.MissingCertifications))
		w.field("기술", matchLine(m.MatchedSkills, m.MissingSkills))
		if m.Recommendation != "" {
			w.paragraph(plain(m.Recommendation))
		}
	},
	"past-questions": func(w sectionWriter, r *types.AnalysisResult) {
		for _, q := range r.PastQuestions {
			label := fmt.Sprintf("%d %s", q.Year, q.Half)
			if q.IsPrediction {
				label += " " + present.LabelPrediction
			}
			line := strings.TrimSpace(label) + ": " + q.Question
			if q.CharLimit > 0 {
				line += " (" + present.FormatChars(q.CharLimit) + ")"
			}
			w.bullet(line)
		}
	},
	"similar-questions": func(w sectionWriter, r *types.AnalysisResult) {
		for _, q := range r.SimilarQuestions {
			label := strings.TrimSpace(fmt.Sprintf("%d %s", q.Year, q.Half))
			w.bullet(fmt.Sprintf("%s: %s (%s)", label, q.Question, present.FormatSimilarity(q.Similarity)))
		}
	},
	"interview-detail": func(w sectionWriter, r *types.AnalysisResult) {
		d := r.InterviewDetail
		if d.FormatType != "" {
			w.field("면접 형식", d.FormatType)
		}
		if len(d.Stages) > 0 {
			w.field("전형 단계", strings.Join(d.Stages, " → "))
		}
		if d.Duration != "" {
			w.field("소요 시간", d.Duration)
		}
		if d.Difficulty != "" {
			w.field("난이도", d.Difficulty)
		}
		if d.PassRate != "" {
			w.field("합격률", d.PassRate)
		}
		for _, q := range d.FrequentQuestions {
			line := fmt.Sprintf("[%s] %s", q.Category, q.Question)
			if q.Frequency == "high" {
				line += " (" + present.LabelFrequent + ")"
			}
			w.bullet(line)
		}
	},
	"interview-questions": func(w sectionWriter, r *types.AnalysisResult) {
		for i, q := range r.InterviewQuestions {
			line := fmt.Sprintf("Q%d. %s", i+1, q.Question)
			if q.IsFrequent {
				line += " (" + present.LabelFrequent + ")"
			}
			w.subheading(line)
			w.field(present.LabelAnswerTips, q.AnswerTips)
			if q.SampleAnswer != "" {
				w.field(present.LabelSampleAnswer, q.SampleAnswer)
			}
		}
	},
	"model-answer": func(w sectionWriter, r *types.AnalysisResult) {
		w.field(present.LabelLength, present.FormatChars(r.ModelAnswerLength))
		w.paragraph(r.ModelAnswer)
	},
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return present.LabelNone
	}
	return strings.Join(items, ", ")
}

func matchLine(matched, missing []string) string {
	return fmt.Sprintf("✔ %s / ✘ %s", joinOrNone(matched), joinOrNone(missing))
}

// plain drops the bold markers the backend puts in summaries.
func plain(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
