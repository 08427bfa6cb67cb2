package formatters

import (
	"fmt"
	"strings"

	"essaylens/internal/present"
	"essaylens/internal/types"
)

// writeLegacy renders the v1 result. It has no section descriptors of its own.
func writeLegacy(w sectionWriter, r *types.LegacyAnalysisResult) {
	w.heading(present.TitleOverall)
	w.scored(present.FormatScore(r.OverallScore, 100), present.TierTone(r.OverallScore))
	lc := r.LengthCheck
	w.field(present.LabelLength, fmt.Sprintf("%s / %s (%s, %s)",
		present.FormatChars(lc.Current), present.FormatChars(lc.Max), present.FormatPercent(lc.Percentage), lc.Status))

	if len(r.Feedbacks) > 0 {
		w.heading("항목별 피드백")
		for _, f := range r.Feedbacks {
			w.scored(fmt.Sprintf("%s (%s)", f.Category, present.FormatScore(f.Score, 10)), present.BandTone(f.Score))
			w.paragraph(plain(f.Comment))
			if f.Suggestion != "" {
				w.field(present.LabelSuggestion, f.Suggestion)
			}
		}
	}

	w.heading(present.TitleKeywords)
	k := r.KeywordAnalysis
	w.field(present.LabelMatchRate, present.FormatPercent(k.MatchRate))
	w.field(present.LabelFound, joinOrNone(k.FoundKeywords))
	w.field(present.LabelMissing, joinOrNone(k.MissingKeywords))

	if n := r.NCSAnalysis; n != nil {
		w.heading(present.TitleNCS)
		for _, item := range n.EvaluatedCompetencies {
			w.scored(fmt.Sprintf("%s %s", item.Competency, present.FormatScore(item.Score, 10)), present.BandTone(item.Score))
			if item.Evidence != "" {
				w.field("  "+present.LabelEvidence, item.Evidence)
			}
			if item.Suggestion != "" {
				w.field("  "+present.LabelSuggestion, item.Suggestion)
			}
		}
		if n.Strongest != "" {
			w.field("강점 역량", n.Strongest)
		}
		if n.Weakest != "" {
			w.field("보완 역량", n.Weakest)
		}
		if n.OverallComment != "" {
			w.paragraph(plain(n.OverallComment))
		}
	}

	if t := r.TalentAnalysis; t != nil {
		w.heading("인재상 부합도")
		w.scored(present.FormatScore(t.MatchScore, 100), present.TierTone(t.MatchScore))
		w.field("부합 항목", joinOrNone(t.MatchedTraits))
		w.field("부족 항목", joinOrNone(t.MissingTraits))
		if t.OverallComment != "" {
			w.paragraph(plain(t.OverallComment))
		}
		for _, tip := range t.ImprovementTips {
			w.bullet(tip)
		}
	}

	if len(r.ExpectedQuestions) > 0 {
		w.heading(present.TitleInterviewQuestions)
		for i, q := range r.ExpectedQuestions {
			w.bullet(fmt.Sprintf("Q%d. %s", i+1, strings.TrimSpace(q)))
		}
	}
}
