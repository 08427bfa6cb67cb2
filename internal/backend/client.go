package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"essaylens/internal/config"
	"essaylens/internal/errors"
	"essaylens/internal/types"
	"essaylens/internal/utils"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Routes of the analysis service
const (
	RouteAnalyzeV2          = "/api/feedback/resume/v2"
	RouteAnalyzeLegacy      = "/api/feedback/resume"
	RouteExtractSkills      = "/api/analyze/skills"
	RouteParseResume        = "/api/analyze/resume"
	RouteOrganizations      = "/api/organizations"
	RouteOrganization       = "/api/organizations/{code}"
	RouteInterviews         = "/api/interviews"
	RouteInterview          = "/api/interviews/{code}"
	RouteInterviewQuestions = "/api/interviews/{code}/questions"
	RouteInterviewFormat    = "/api/interviews/{code}/format"
	RouteInterviewStats     = "/api/interviews/{code}/stats"
	RouteUploadPDF          = "/api/upload/pdf"
	RouteHealth             = "/health"
)

// Breaker groups. Health checks bypass the breaker so they always reach the service.
const (
	groupAnalyze   = "analyze"
	groupCatalogue = "catalogue"
	groupExtract   = "extract"
)

// Client talks to the analysis service. It never retries.
type Client struct {
	http          *resty.Client
	breakers      map[string]*CircuitBreaker
	tracker       OperationTracker
	maxUploadSize int64
	logger        *errors.Logger
}

// Option customizes a Client
type Option func(*clientOptions)

type clientOptions struct {
	transport     http.RoundTripper
	tracker       OperationTracker
	observer      StateObserver
	maxUploadSize int64
}

// WithTransport replaces the base transport. It is still wrapped by otelhttp.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithTracker records every call with the given tracker.
func WithTracker(t OperationTracker) Option {
	return func(o *clientOptions) { o.tracker = t }
}

// WithStateObserver is notified on breaker transitions.
func WithStateObserver(fn StateObserver) Option {
	return func(o *clientOptions) { o.observer = fn }
}

// WithMaxUploadSize bounds the PDF upload preflight.
func WithMaxUploadSize(n int64) Option {
	return func(o *clientOptions) { o.maxUploadSize = n }
}

// NewClient creates a client for the configured base URL
func NewClient(cfg config.BackendConfig, logger *errors.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = errors.Discard()
	}
	o := clientOptions{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetTransport(otelhttp.NewTransport(o.transport)).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	logger.Debug("Initializing backend client",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	return &Client{
		http: rc,
		breakers: map[string]*CircuitBreaker{
			groupAnalyze:   NewCircuitBreaker(groupAnalyze, cfg.CircuitBreaker, logger, o.observer),
			groupCatalogue: NewCircuitBreaker(groupCatalogue, cfg.CircuitBreaker, logger, o.observer),
			groupExtract:   NewCircuitBreaker(groupExtract, cfg.CircuitBreaker, logger, o.observer),
		},
		tracker:       o.tracker,
		maxUploadSize: o.maxUploadSize,
		logger:        logger,
	}
}

// AnalyzeV2 requests the full v2 analysis of one essay answer
func (c *Client) AnalyzeV2(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, "analyze_v2", groupAnalyze, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(req).Post(RouteAnalyzeV2)
	})
	if err != nil {
		return nil, err
	}
	return types.DecodeResult(body)
}

// AnalyzeLegacy requests the v1 feedback format
func (c *Client) AnalyzeLegacy(ctx context.Context, req types.AnalysisRequest) (*types.LegacyAnalysisResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, "analyze_legacy", groupAnalyze, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(req).Post(RouteAnalyzeLegacy)
	})
	if err != nil {
		return nil, err
	}
	return types.DecodeLegacyResult(body)
}

// ExtractSkills extracts categorized skills from free text
func (c *Client) ExtractSkills(ctx context.Context, req types.SkillAnalysisRequest) (*types.SkillAnalysisResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "text is required", nil)
	}

	var out types.SkillAnalysisResponse
	if err := c.postJSON(ctx, "extract_skills", groupExtract, RouteExtractSkills, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParseResume splits resume text into sections and extracts skills
func (c *Client) ParseResume(ctx context.Context, req types.ResumeParseRequest) (*types.ResumeParseResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "text is required", nil)
	}

	var out types.ResumeParseResponse
	if err := c.postJSON(ctx, "parse_resume", groupExtract, RouteParseResume, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrganizations returns the codes of every known organization
func (c *Client) ListOrganizations(ctx context.Context) ([]string, error) {
	return c.getCodes(ctx, "list_organizations", RouteOrganizations)
}

// GetOrganization returns the raw organization profile
func (c *Client) GetOrganization(ctx context.Context, code string) (json.RawMessage, error) {
	return c.getRaw(ctx, "get_organization", RouteOrganization, code, nil)
}

// ListInterviews returns the codes of organizations with interview data
func (c *Client) ListInterviews(ctx context.Context) ([]string, error) {
	return c.getCodes(ctx, "list_interviews", RouteInterviews)
}

// GetInterview returns the complete interview data of an organization
func (c *Client) GetInterview(ctx context.Context, code string) (json.RawMessage, error) {
	return c.getRaw(ctx, "get_interview", RouteInterview, code, nil)
}

// GetInterviewQuestions returns the filtered interview questions of an organization
func (c *Client) GetInterviewQuestions(ctx context.Context, code string, filter types.InterviewQuestionFilter) (json.RawMessage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return c.getRaw(ctx, "get_interview_questions", RouteInterviewQuestions, code, filter.Query())
}

// GetInterviewFormat returns the interview format of an organization
func (c *Client) GetInterviewFormat(ctx context.Context, code string) (json.RawMessage, error) {
	return c.getRaw(ctx, "get_interview_format", RouteInterviewFormat, code, nil)
}

// GetInterviewStats returns question statistics of an organization
func (c *Client) GetInterviewStats(ctx context.Context, code string) (json.RawMessage, error) {
	return c.getRaw(ctx, "get_interview_stats", RouteInterviewStats, code, nil)
}

// UploadPDF sends a PDF for text extraction after checking it locally
func (c *Client) UploadPDF(ctx context.Context, filename string, data []byte) (*types.UploadResponse, error) {
	if err := utils.ValidatePDFUpload(filename, data, c.maxUploadSize); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil).
			WithContext("file", filename)
	}

	body, err := c.do(ctx, "upload_pdf", groupExtract, func(r *resty.Request) (*resty.Response, error) {
		return r.SetFileReader("file", filepath.Base(filename), bytes.NewReader(data)).Post(RouteUploadPDF)
	})
	if err != nil {
		return nil, err
	}

	var out types.UploadResponse
	if err := decode(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the service is up
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	body, err := c.do(ctx, "health", "", func(r *resty.Request) (*resty.Response, error) {
		return r.Get(RouteHealth)
	})
	if err != nil {
		return nil, err
	}

	var out types.HealthResponse
	if err := decode(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BreakerStats returns the state of every breaker group
func (c *Client) BreakerStats() map[string]any {
	stats := make(map[string]any, len(c.breakers))
	for group, cb := range c.breakers {
		stats[group] = cb.GetStats()
	}
	return stats
}

// Healthy reports whether every breaker is closed
func (c *Client) Healthy() bool {
	for _, cb := range c.breakers {
		if !cb.IsHealthy() {
			return false
		}
	}
	return true
}

func (c *Client) postJSON(ctx context.Context, op, group, route string, in, out any) error {
	body, err := c.do(ctx, op, group, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(in).Post(route)
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) getCodes(ctx context.Context, op, route string) ([]string, error) {
	body, err := c.do(ctx, op, groupCatalogue, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(route)
	})
	if err != nil {
		return nil, err
	}
	var codes []string
	if err := decode(body, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (c *Client) getRaw(ctx context.Context, op, route, code string, query map[string]string) (json.RawMessage, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "organization code is required", nil)
	}
	body, err := c.do(ctx, op, groupCatalogue, func(r *resty.Request) (*resty.Response, error) {
		r.SetPathParam("code", code)
		if len(query) > 0 {
			r.SetQueryParams(query)
		}
		return r.Get(route)
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.NewBackendError(errors.ErrCodeMalformedResult, "backend returned invalid JSON", nil).
			WithContext("operation", op)
	}
	return json.RawMessage(body), nil
}

// do runs one request through the tracker and the group's breaker and
// returns the body of a 2xx answer.
func (c *Client) do(ctx context.Context, op, group string, send func(*resty.Request) (*resty.Response, error)) ([]byte, error) {
	var body []byte
	call := func(ctx context.Context) error {
		resp, err := c.breakers[group].Execute(func() (*resty.Response, error) {
			resp, err := send(c.http.R().SetContext(ctx))
			if err != nil {
				return nil, err
			}
			if !resp.IsSuccess() {
				return resp, newAPIError(resp.StatusCode(), resp.Body())
			}
			return resp, nil
		})
		if err != nil {
			return c.classify(op, err)
		}
		body = resp.Body()
		return nil
	}

	var err error
	if c.tracker != nil {
		err = c.tracker.TrackBackendOperation(ctx, op, call)
	} else {
		err = call(ctx)
	}
	return body, err
}

// classify maps transport and breaker failures onto the error contract.
// APIErrors pass through unchanged.
func (c *Client) classify(op string, err error) error {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		c.logger.Warn("Backend rejected request",
			"operation", op,
			"status", apiErr.Status,
			"message", apiErr.Message)
		return apiErr
	}

	var appErr *errors.AppError
	switch {
	case isOpenCircuit(err):
		appErr = errors.NewNetworkError(errors.ErrCodeCircuitOpen,
			"backend circuit breaker is open", err)
	case isTimeout(err):
		appErr = errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			"backend did not answer in time", err)
	default:
		appErr = errors.NewNetworkError(errors.ErrCodeBackendUnreachable,
			"could not reach the backend", err)
	}
	appErr.WithContext("operation", op)
	c.logger.LogError(appErr, "Backend call failed")
	return appErr
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewBackendError(errors.ErrCodeMalformedResult,
			fmt.Sprintf("unexpected response shape: %v", err), err)
	}
	return nil
}

var _ Service = (*Client)(nil)
