package types

// FeedbackItem is one category of v1 feedback
type FeedbackItem struct {
	Category   string `json:"category"`
	Score      int    `json:"score"`
	Comment    string `json:"comment"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NCSItem is one evaluated competency in the v1 NCS analysis
type NCSItem struct {
	Competency string `json:"competency"`
	Score      int    `json:"score"`
	Evidence   string `json:"evidence"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NCSAnalysis is the v1 NCS competency block
type NCSAnalysis struct {
	EvaluatedCompetencies []NCSItem `json:"evaluated_competencies"`
	Strongest             string    `json:"strongest"`
	Weakest               string    `json:"weakest"`
	OverallComment        string    `json:"overall_comment"`
}

// TalentAnalysis is the v1 talent-image comparison
type TalentAnalysis struct {
	MatchScore      int      `json:"match_score"`
	MatchedTraits   []string `json:"matched_traits"`
	MissingTraits   []string `json:"missing_traits"`
	OverallComment  string   `json:"overall_comment"`
	ImprovementTips []string `json:"improvement_tips"`
}

// LegacyAnalysisResult is the superseded v1 response, kept for compatibility
type LegacyAnalysisResult struct {
	OverallScore      int             `json:"overall_score"`
	LengthCheck       LengthCheck     `json:"length_check"`
	Feedbacks         []FeedbackItem  `json:"feedbacks"`
	KeywordAnalysis   KeywordAnalysis `json:"keyword_analysis"`
	NCSAnalysis       *NCSAnalysis    `json:"ncs_analysis,omitempty"`
	TalentAnalysis    *TalentAnalysis `json:"talent_analysis,omitempty"`
	ExpectedQuestions []string        `json:"expected_questions"`
}
