package backend

import (
	"context"
	"encoding/json"

	"essaylens/internal/types"
)

// Service is the analysis service contract consumed by the CLI and the server
type Service interface {
	AnalyzeV2(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)
	AnalyzeLegacy(ctx context.Context, req types.AnalysisRequest) (*types.LegacyAnalysisResult, error)
	ExtractSkills(ctx context.Context, req types.SkillAnalysisRequest) (*types.SkillAnalysisResponse, error)
	ParseResume(ctx context.Context, req types.ResumeParseRequest) (*types.ResumeParseResponse, error)

	ListOrganizations(ctx context.Context) ([]string, error)
	GetOrganization(ctx context.Context, code string) (json.RawMessage, error)

	ListInterviews(ctx context.Context) ([]string, error)
	GetInterview(ctx context.Context, code string) (json.RawMessage, error)
	GetInterviewQuestions(ctx context.Context, code string, filter types.InterviewQuestionFilter) (json.RawMessage, error)
	GetInterviewFormat(ctx context.Context, code string) (json.RawMessage, error)
	GetInterviewStats(ctx context.Context, code string) (json.RawMessage, error)

	UploadPDF(ctx context.Context, filename string, data []byte) (*types.UploadResponse, error)
	Health(ctx context.Context) (*types.HealthResponse, error)

	BreakerStats() map[string]any
	Healthy() bool
}

// OperationTracker instruments a single backend call. The observability
// manager satisfies it.
type OperationTracker interface {
	TrackBackendOperation(ctx context.Context, operation string, fn func(context.Context) error) error
}
