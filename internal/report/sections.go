// Package report turns an analysis result into the interactive report page
// and the print document. Both walk the same ordered section list.
package report

import (
	"essaylens/internal/present"
	"essaylens/internal/types"
)

// Section describes one report section and when it is shown
type Section struct {
	ID      string
	Title   string
	Icon    string
	Present func(r *types.AnalysisResult) bool
}

func always(*types.AnalysisResult) bool { return true }

// Sections is the fixed display order.
var Sections = []Section{
	{ID: "overall", Title: present.TitleOverall, Icon: "📊", Present: always},
	{ID: "organization", Title: present.TitleOrganization, Icon: "🏛️", Present: func(r *types.AnalysisResult) bool {
		return r.OrganizationInfo != nil && r.OrganizationInfo.Name != ""
	}},
	{ID: "warnings", Title: present.TitleWarnings, Icon: "⚠️", Present: func(r *types.AnalysisResult) bool {
		return r.Warnings != nil
	}},
	{ID: "strengths", Title: present.TitleStrengths, Icon: "✨", Present: func(r *types.AnalysisResult) bool {
		return len(r.Strengths) > 0
	}},
	{ID: "improvements", Title: present.TitleImprovements, Icon: "🔧", Present: func(r *types.AnalysisResult) bool {
		return len(r.Improvements) > 0
	}},
	{ID: "keywords", Title: present.TitleKeywords, Icon: "🔑", Present: always},
	{ID: "core-values", Title: present.TitleCoreValues, Icon: "💎", Present: func(r *types.AnalysisResult) bool {
		return len(r.CoreValueScores) > 0
	}},
	{ID: "ncs", Title: present.TitleNCS, Icon: "📚", Present: func(r *types.AnalysisResult) bool {
		return len(r.NCSCompetencyScores) > 0
	}},
	{ID: "skill-match", Title: present.TitleSkillMatch, Icon: "🎯", Present: func(r *types.AnalysisResult) bool {
		return !r.PositionSkillMatch.IsEmpty()
	}},
	{ID: "past-questions", Title: present.TitlePastQuestions, Icon: "📝", Present: func(r *types.AnalysisResult) bool {
		return len(r.PastQuestions) > 0
	}},
	{ID: "similar-questions", Title: present.TitleSimilarQuestions, Icon: "🔍", Present: func(r *types.AnalysisResult) bool {
		return len(r.SimilarQuestions) > 0
	}},
	{ID: "interview-detail", Title: present.TitleInterviewDetail, Icon: "🎤", Present: func(r *types.AnalysisResult) bool {
		return !r.InterviewDetail.IsEmpty()
	}},
	{ID: "interview-questions", Title: present.TitleInterviewQuestions, Icon: "💬", Present: func(r *types.AnalysisResult) bool {
		return len(r.InterviewQuestions) > 0
	}},
	{ID: "model-answer", Title: present.TitleModelAnswer, Icon: "📄", Present: func(r *types.AnalysisResult) bool {
		return r.ModelAnswer != ""
	}},
}

// VisibleSections returns the sections shown for r, in display order.
func VisibleSections(r *types.AnalysisResult) []Section {
	if r == nil {
		return nil
	}
	visible := make([]Section, 0, len(Sections))
	for _, s := range Sections {
		if s.Present(r) {
			visible = append(visible, s)
		}
	}
	return visible
}

// Options controls page-level output shared by both renderers
type Options struct {
	// Title appears in the document head and export file name.
	Title string
	// ExportURL is where the interactive page posts export requests.
	ExportURL string
	// ServerBacked marks pages served by the process that holds the result.
	ServerBacked bool
}

func (o Options) title() string {
	if o.Title == "" {
		return present.DefaultDocumentTitle
	}
	return o.Title
}

func (o Options) exportURL() string {
	if o.ExportURL == "" {
		return "/api/export"
	}
	return o.ExportURL
}
