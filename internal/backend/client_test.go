package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"essaylens/internal/config"
	"essaylens/internal/errors"
	"essaylens/internal/types"
)

func testBackendConfig(url string) config.BackendConfig {
	return config.BackendConfig{
		BaseURL:   url,
		Timeout:   5 * time.Second,
		UserAgent: "essaylens-test",
	}
}

func validRequest() types.AnalysisRequest {
	return types.AnalysisRequest{
		Organization: "nhis",
		Position:     "행정직",
		Question:     "지원 동기",
		Answer:       "저는 공공서비스의 가치를 실현하고자 지원했습니다.",
	}
}

type recordingTracker struct {
	ops []string
}

func (r *recordingTracker) TrackBackendOperation(ctx context.Context, op string, fn func(context.Context) error) error {
	r.ops = append(r.ops, op)
	return fn(ctx)
}

func TestAnalyzeV2(t *testing.T) {
	fixture, err := os.ReadFile("../types/testdata/full_result.json")
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteAnalyzeV2 {
			t.Errorf("Expected path %s, got %s", RouteAnalyzeV2, r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != "essaylens-test" {
			t.Errorf("Expected user agent essaylens-test, got %q", ua)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	tracker := &recordingTracker{}
	client := NewClient(testBackendConfig(server.URL+"/"), nil, WithTracker(tracker))

	req := validRequest()
	req.Question = "  "
	result, err := client.AnalyzeV2(context.Background(), req)
	if err != nil {
		t.Fatalf("AnalyzeV2 failed: %v", err)
	}
	if result.OverallScore != 78 {
		t.Errorf("Expected score 78, got %d", result.OverallScore)
	}
	if !strings.Contains(gotBody, `"question":"자기소개서"`) {
		t.Errorf("Expected default question in body, got %s", gotBody)
	}
	if !strings.Contains(gotBody, `"maxLength":1000`) {
		t.Errorf("Expected default maxLength in body, got %s", gotBody)
	}
	if len(tracker.ops) != 1 || tracker.ops[0] != "analyze_v2" {
		t.Errorf("Expected tracked operation analyze_v2, got %v", tracker.ops)
	}
}

func TestAnalyzeValidatesBeforeSending(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewClient(testBackendConfig(server.URL), nil)

	req := validRequest()
	req.Answer = "   "
	_, err := client.AnalyzeV2(context.Background(), req)
	if !errors.HasCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("Expected INVALID_REQUEST, got %v", err)
	}
	if _, err := client.ExtractSkills(context.Background(), types.SkillAnalysisRequest{}); !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for empty text, got %v", err)
	}
	if _, err := client.GetOrganization(context.Background(), " "); !errors.HasCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("Expected INVALID_REQUEST for empty code, got %v", err)
	}
	if _, err := client.GetInterviewQuestions(context.Background(), "nhis", types.InterviewQuestionFilter{Limit: 500}); err == nil {
		t.Error("Expected error for out of range limit")
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("Expected no requests to reach the server, got %d", n)
	}
}

func TestBackendErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "detail string",
			status:      http.StatusNotFound,
			body:        `{"detail":"기관을 찾을 수 없습니다"}`,
			wantMessage: "기관을 찾을 수 없습니다",
		},
		{
			name:        "detail list",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail":[{"loc":["body","answer"],"msg":"field required"},{"msg":"too long"}]}`,
			wantMessage: "field required; too long",
		},
		{
			name:        "non json body",
			status:      http.StatusBadGateway,
			body:        "<html>bad gateway</html>",
			wantMessage: "HTTP Error: 502",
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			body:        "",
			wantMessage: "HTTP Error: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(testBackendConfig(server.URL), nil)
			_, err := client.AnalyzeV2(context.Background(), validRequest())
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := StatusOf(err); got != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, got)
			}
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("Expected *APIError, got %T", err)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
			if !strings.Contains(Describe(err), tt.wantMessage) {
				t.Errorf("Expected description to carry %q, got %q", tt.wantMessage, Describe(err))
			}
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(testBackendConfig(url), nil)
	_, err := client.Health(context.Background())
	if !errors.HasCode(err, errors.ErrCodeBackendUnreachable) {
		t.Fatalf("Expected BACKEND_UNREACHABLE, got %v", err)
	}
	if !errors.IsType(err, errors.ErrorTypeNetwork) {
		t.Errorf("Expected network error type, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Errorf("Expected status 0, got %d", StatusOf(err))
	}
	if !strings.Contains(Describe(err), "연결할 수 없습니다") {
		t.Errorf("Unexpected description: %s", Describe(err))
	}
}

func TestBackendTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testBackendConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, nil)

	_, err := client.ListOrganizations(context.Background())
	if !errors.HasCode(err, errors.ErrCodeNetworkTimeout) {
		t.Errorf("Expected NETWORK_TIMEOUT, got %v", err)
	}
}

func TestCircuitOpen(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var opened atomic.Bool
	cfg := testBackendConfig(server.URL)
	cfg.CircuitBreaker = enabledBreaker()
	client := NewClient(cfg, nil, WithStateObserver(func(name, from, to string) {
		if to == "open" {
			opened.Store(true)
		}
	}))

	for range 2 {
		_, _ = client.AnalyzeV2(context.Background(), validRequest())
	}
	if !opened.Load() {
		t.Fatal("Expected the analyze breaker to open")
	}
	if client.Healthy() {
		t.Error("Client should report unhealthy with an open breaker")
	}

	_, err := client.AnalyzeV2(context.Background(), validRequest())
	if !errors.HasCode(err, errors.ErrCodeCircuitOpen) {
		t.Errorf("Expected CIRCUIT_OPEN, got %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("Expected 2 requests to reach the server, got %d", n)
	}

	stats := client.BreakerStats()
	analyze, ok := stats["analyze"].(map[string]any)
	if !ok {
		t.Fatalf("Expected analyze stats, got %v", stats)
	}
	if analyze["state"] != "open" {
		t.Errorf("Expected analyze state open, got %v", analyze["state"])
	}
	catalogue := stats["catalogue"].(map[string]any)
	if catalogue["state"] != "closed" {
		t.Errorf("Expected catalogue breaker unaffected, got %v", catalogue["state"])
	}
}

func TestUploadPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7\nminimal")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteUploadPDF {
			t.Errorf("Expected path %s, got %s", RouteUploadPDF, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected multipart field 'file': %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "resume.pdf" {
			t.Errorf("Expected filename resume.pdf, got %s", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != string(pdf) {
			t.Errorf("Uploaded bytes differ: %q", data)
		}
		_, _ = w.Write([]byte(`{"text":"추출된 텍스트"}`))
	}))
	defer server.Close()

	client := NewClient(testBackendConfig(server.URL), nil, WithMaxUploadSize(1024))

	resp, err := client.UploadPDF(context.Background(), "/tmp/docs/resume.pdf", pdf)
	if err != nil {
		t.Fatalf("UploadPDF failed: %v", err)
	}
	if resp.Text != "추출된 텍스트" {
		t.Errorf("Expected extracted text, got %q", resp.Text)
	}

	rejects := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"wrong extension", "resume.docx", pdf},
		{"missing magic", "resume.pdf", []byte("plain text")},
		{"too large", "resume.pdf", append([]byte("%PDF"), make([]byte, 2048)...)},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.UploadPDF(context.Background(), tt.filename, tt.data)
			if !errors.HasCode(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Expected INVALID_FORMAT, got %v", err)
			}
		})
	}
}

func TestInterviewQuestionsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interviews/nhis/questions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("difficulty") != "3" || q.Get("limit") != "5" || q.Get("category") != "직무" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		if q.Has("question_type") {
			t.Error("Zero filters must not be sent")
		}
		_, _ = w.Write([]byte(`{"questions":[{"question":"왜 지원했나요?"}]}`))
	}))
	defer server.Close()

	client := NewClient(testBackendConfig(server.URL), nil)
	raw, err := client.GetInterviewQuestions(context.Background(), "nhis",
		types.InterviewQuestionFilter{Category: "직무", Difficulty: 3, Limit: 5})
	if err != nil {
		t.Fatalf("GetInterviewQuestions failed: %v", err)
	}
	if !strings.Contains(string(raw), "왜 지원했나요?") {
		t.Errorf("Expected raw payload, got %s", raw)
	}
}

func TestCatalogueMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(testBackendConfig(server.URL), nil)

	if _, err := client.GetOrganization(context.Background(), "nhis"); !errors.HasCode(err, errors.ErrCodeMalformedResult) {
		t.Errorf("Expected MALFORMED_RESULT for raw endpoint, got %v", err)
	}
	if _, err := client.ListInterviews(context.Background()); !errors.HasCode(err, errors.ErrCodeMalformedResult) {
		t.Errorf("Expected MALFORMED_RESULT for list endpoint, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"circuit", errors.NewNetworkError(errors.ErrCodeCircuitOpen, "open", nil), "잠시 요청을 중단했습니다"},
		{"timeout", errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "slow", nil), "시간이 초과되었습니다"},
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "answer is required", nil), "answer is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.err)
			if tt.want == "" && got != "" {
				t.Errorf("Expected empty description, got %q", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, got)
			}
		})
	}
}
