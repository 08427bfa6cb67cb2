package types

// LengthCheck reports answer length against the question's limit.
// Status is computed upstream (short, optimal, over) and is carried as-is.
type LengthCheck struct {
	Current    int     `json:"current"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// Warning is a common-mistake finding such as a blind-hiring violation
type Warning struct {
	Type         string `json:"type"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	DetectedText string `json:"detected_text,omitempty"`
	Suggestion   string `json:"suggestion,omitempty"`
}

// NewsItem is one entry of an organization's recent news
type NewsItem struct {
	Title    string `json:"title"`
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url,omitempty"`
}

// OrganizationInfo summarizes the target organization
type OrganizationInfo struct {
	Name                string     `json:"name"`
	Website             string     `json:"website,omitempty"`
	CoreValues          []string   `json:"core_values"`
	TalentImage         string     `json:"talent_image,omitempty"`
	RecentNews          []NewsItem `json:"recent_news"`
	InterviewKeywords   []string   `json:"interview_keywords"`
	RecruitmentProcess  []string   `json:"recruitment_process,omitempty"`
	InterviewDifficulty string     `json:"interview_difficulty,omitempty"`
	InterviewPassRate   string     `json:"interview_pass_rate,omitempty"`
	DataUpdatedAt       string     `json:"data_updated_at,omitempty"`
}

// FrequentQuestion is a frequently asked interview question
type FrequentQuestion struct {
	Question  string `json:"question"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"` // "high" or "normal"
	Tips      string `json:"tips,omitempty"`
}

// InterviewDetail describes the organization's interview process
type InterviewDetail struct {
	FormatType        string             `json:"format_type,omitempty"`
	Stages            []string           `json:"stages,omitempty"`
	Duration          string             `json:"duration,omitempty"`
	Difficulty        string             `json:"difficulty,omitempty"`
	PassRate          string             `json:"pass_rate,omitempty"`
	FrequentQuestions []FrequentQuestion `json:"frequent_questions,omitempty"`
}

// IsEmpty reports whether the backend sent a detail object with nothing in it.
func (d *InterviewDetail) IsEmpty() bool {
	return d == nil || (d.FormatType == "" && len(d.Stages) == 0 && d.Duration == "" &&
		d.Difficulty == "" && d.PassRate == "" && len(d.FrequentQuestions) == 0)
}

// Strength is something the essay did well (score 0-10)
type Strength struct {
	Title      string `json:"title"`
	Score      int    `json:"score"`
	Quote      string `json:"quote"`
	Evaluation string `json:"evaluation"`
}

// Improvement is a weakness with a concrete rewrite suggestion (score 0-10)
type Improvement struct {
	Title        string `json:"title"`
	Score        int    `json:"score"`
	Problem      string `json:"problem"`
	CurrentText  string `json:"current_text,omitempty"`
	ImprovedText string `json:"improved_text"`
}

// KeywordAnalysis lists found and missing job keywords
type KeywordAnalysis struct {
	FoundKeywords   []string `json:"found_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	MatchRate       float64  `json:"match_rate"`
}

// CoreValueScore scores how well one organizational value is reflected
type CoreValueScore struct {
	Value      string `json:"value"`
	Score      int    `json:"score"`
	Found      bool   `json:"found"`
	Evidence   string `json:"evidence,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NCSCompetencyScore scores one NCS basic job competency
type NCSCompetencyScore struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Importance string `json:"importance"` // "required" or "normal"
	Score      int    `json:"score"`
	Found      bool   `json:"found"`
	Evidence   string `json:"evidence,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// SimilarQuestion is a past essay question similar to the current one
type SimilarQuestion struct {
	Year            int      `json:"year"`
	Half            string   `json:"half,omitempty"`
	Question        string   `json:"question"`
	Similarity      float64  `json:"similarity"`
	CharLimit       int      `json:"char_limit,omitempty"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// PositionSkillMatch compares the essay with position preferences
type PositionSkillMatch struct {
	MatchedMajors         []string `json:"matched_majors"`
	MissingMajors         []string `json:"missing_majors"`
	MatchedCertifications []string `json:"matched_certifications"`
	MissingCertifications []string `json:"missing_certifications"`
	MatchedSkills         []string `json:"matched_skills"`
	MissingSkills         []string `json:"missing_skills"`
	OverallMatchRate      float64  `json:"overall_match_rate"`
	Recommendation        string   `json:"recommendation,omitempty"`
}

// IsEmpty reports whether the match carries no information at all.
func (m *PositionSkillMatch) IsEmpty() bool {
	return m == nil || (len(m.MatchedMajors) == 0 && len(m.MissingMajors) == 0 &&
		len(m.MatchedCertifications) == 0 && len(m.MissingCertifications) == 0 &&
		len(m.MatchedSkills) == 0 && len(m.MissingSkills) == 0 &&
		m.OverallMatchRate == 0 && m.Recommendation == "")
}

// InterviewQuestion is an expected interview question
type InterviewQuestion struct {
	Question     string `json:"question"`
	IsFrequent   bool   `json:"is_frequent"`
	Years        []int  `json:"years,omitempty"`
	AnswerTips   string `json:"answer_tips"`
	SampleAnswer string `json:"sample_answer,omitempty"`
}

// PastQuestion is a past (or predicted) essay question of the organization
type PastQuestion struct {
	Year         int    `json:"year"`
	Half         string `json:"half,omitempty"`
	Question     string `json:"question"`
	CharLimit    int    `json:"char_limit,omitempty"`
	IsPrediction bool   `json:"is_prediction,omitempty"`
}

// AnalysisResult is one complete v2 analysis. It is received whole and
// never mutated after decoding.
type AnalysisResult struct {
	OverallScore   int         `json:"overall_score"`
	OverallGrade   string      `json:"overall_grade"`
	OverallSummary string      `json:"overall_summary"`
	LengthCheck    LengthCheck `json:"length_check"`

	// nil means the section is absent; an empty slice means "no issues found".
	Warnings []Warning `json:"warnings"`

	OrganizationInfo *OrganizationInfo `json:"organization_info,omitempty"`
	InterviewDetail  *InterviewDetail  `json:"interview_detail,omitempty"`

	Strengths       []Strength      `json:"strengths"`
	Improvements    []Improvement   `json:"improvements"`
	KeywordAnalysis KeywordAnalysis `json:"keyword_analysis"`

	CoreValueScores     []CoreValueScore     `json:"core_value_scores,omitempty"`
	NCSCompetencyScores []NCSCompetencyScore `json:"ncs_competency_scores,omitempty"`
	SimilarQuestions    []SimilarQuestion    `json:"similar_questions,omitempty"`
	PositionSkillMatch  *PositionSkillMatch  `json:"position_skill_match,omitempty"`

	InterviewQuestions []InterviewQuestion `json:"interview_questions"`
	PastQuestions      []PastQuestion      `json:"past_questions,omitempty"`

	ModelAnswer       string `json:"model_answer"`
	ModelAnswerLength int    `json:"model_answer_length"`
}
