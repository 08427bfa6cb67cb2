package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"essaylens/internal/backend"
	"essaylens/internal/config"
	"essaylens/internal/errors"
	"essaylens/internal/export"
	"essaylens/internal/present"
	"essaylens/internal/report"
	"essaylens/internal/types"
)

type fakeBackend struct {
	backend.Service

	mu              sync.Mutex
	result          *types.AnalysisResult
	err             error
	healthErr       error
	seen            *Server
	shownDuringCall bool
	uploaded        []byte
}

func (f *fakeBackend) AnalyzeV2(_ context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen != nil {
		f.shownDuringCall = f.seen.Displayed() != nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBackend) ListOrganizations(context.Context) ([]string, error) {
	return []string{"NHIS", "KEPCO"}, nil
}

func (f *fakeBackend) GetOrganization(_ context.Context, code string) (json.RawMessage, error) {
	if code != "NHIS" {
		return nil, &backend.APIError{Status: 404, Message: "not found"}
	}
	return json.RawMessage(`{"name":"국민건강보험공단"}`), nil
}

func (f *fakeBackend) UploadPDF(_ context.Context, filename string, data []byte) (*types.UploadResponse, error) {
	if !strings.HasSuffix(filename, ".pdf") {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "only .pdf files are accepted", nil)
	}
	f.uploaded = data
	return &types.UploadResponse{Text: "추출된 텍스트"}, nil
}

func (f *fakeBackend) Health(context.Context) (*types.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &types.HealthResponse{Status: "ok", Version: "2.0.0", Environment: "test"}, nil
}

func (f *fakeBackend) BreakerStats() map[string]any {
	return map[string]any{"analyze": map[string]any{"state": "closed"}}
}

func (f *fakeBackend) Healthy() bool { return true }

type fakeFragment struct{}

func (fakeFragment) URL() string   { return "about:blank" }
func (fakeFragment) Detach() error { return nil }

type fakeStage struct{}

func (fakeStage) Attach(context.Context, []byte) (export.Fragment, error) {
	return fakeFragment{}, nil
}

type fakeRasterizer struct {
	started chan struct{}
	release chan struct{}
	err     error
	calls   int
	profile export.Profile
}

func (r *fakeRasterizer) Rasterize(_ context.Context, _ export.Fragment, profile export.Profile) ([]byte, error) {
	r.calls++
	r.profile = profile
	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func loadFixture(t *testing.T) *types.AnalysisResult {
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

func newTestServer(t *testing.T, fb *fakeBackend, rast *fakeRasterizer) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Environment = "test"
	cfg.App.MaxFileSize = 1 << 20

	s := NewServer(cfg, ServerConfig{Version: "test", MaxRequestSize: 2 << 20}, errors.Discard())
	s.Backend = fb
	if rast == nil {
		rast = &fakeRasterizer{}
	}
	s.Pipeline = export.NewPipeline(export.Config{
		Stage:      fakeStage{},
		Rasterizer: rast,
		Verify:     func([]byte) (int, error) { return 1, nil },
		Now:        func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	fb.seen = s
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected JSON error body, got %q", rec.Body.String())
	}
	return resp
}

func TestReportEmptyState(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/report", nil, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, present.LabelEmptyReport) {
		t.Error("Expected empty state label")
	}
	if !strings.Contains(body, `data-source="server"`) {
		t.Error("Expected a server backed page")
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("Expected request id abc-123, got %q", got)
	}
}

func TestLoadAndClearReport(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	h := s.Handler()
	fixture, _ := os.ReadFile("../types/testdata/full_result.json")

	rec := do(t, h, http.MethodPost, "/api/report", fixture, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if s.Displayed() == nil || s.Displayed().OverallScore != 78 {
		t.Fatal("Expected the posted result to be displayed")
	}

	page := do(t, h, http.MethodGet, "/report", nil, "")
	if !strings.Contains(page.Body.String(), "국민건강보험공단") {
		t.Error("Expected organization in the report page")
	}

	preview := do(t, h, http.MethodGet, "/report/print", nil, "")
	if preview.Code != http.StatusOK {
		t.Errorf("Expected print preview, got %d", preview.Code)
	}

	rec = do(t, h, http.MethodDelete, "/api/report", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if s.Displayed() != nil {
		t.Error("Expected the displayed result to be cleared")
	}

	preview = do(t, h, http.MethodGet, "/report/print", nil, "")
	if preview.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a result, got %d", preview.Code)
	}
}

func TestLoadReportMalformed(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/api/report", []byte(`{"overall_score": 1}`), "application/json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if s.Displayed() != nil {
		t.Error("A malformed result must not be displayed")
	}
}

func TestAnalyze(t *testing.T) {
	result := loadFixture(t)
	fb := &fakeBackend{result: result}
	s := newTestServer(t, fb, nil)
	s.SetDisplayed(&types.AnalysisResult{OverallScore: 10})

	body := []byte(`{"organization":"국민건강보험공단","position":"행정직","answer":"저는 ..."}`)
	rec := do(t, s.Handler(), http.MethodPost, "/api/analyze", body, "application/json; charset=utf-8")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fb.shownDuringCall {
		t.Error("The previous result must be cleared before the backend call")
	}
	if s.Displayed() != result {
		t.Error("Expected the new result to be displayed")
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantInMsg  string
	}{
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "required fields are empty: answer", nil), http.StatusBadRequest, "answer"},
		{"rejected", &backend.APIError{Status: 422, Message: "answer too short"}, 422, "answer too short"},
		{"upstream failure", &backend.APIError{Status: 500, Message: "HTTP Error: 500"}, http.StatusBadGateway, "500"},
		{"circuit open", errors.NewNetworkError(errors.ErrCodeCircuitOpen, "circuit breaker is open", nil), http.StatusServiceUnavailable, "잠시"},
		{"timeout", errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "timed out", nil), http.StatusGatewayTimeout, "시간"},
		{"unreachable", errors.NewNetworkError(errors.ErrCodeBackendUnreachable, "dial tcp", nil), http.StatusBadGateway, "연결할 수 없습니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeBackend{err: tt.err}, nil)
			body := []byte(`{"organization":"a","position":"b","answer":"c"}`)
			rec := do(t, s.Handler(), http.MethodPost, "/api/analyze", body, "application/json")

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if msg := decodeError(t, rec).Message; !strings.Contains(msg, tt.wantInMsg) {
				t.Errorf("Expected message to contain %q, got %q", tt.wantInMsg, msg)
			}
			if s.Displayed() != nil {
				t.Error("A failed analysis must leave nothing displayed")
			}
		})
	}
}

func TestAnalyzeRejectsNonJSON(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/api/analyze", []byte("answer=1"), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestExportDisplayedResult(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	s.SetDisplayed(loadFixture(t))

	rec := do(t, s.Handler(), http.MethodPost, "/api/export", []byte(`{"title":"지원서 검토"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	want := `filename*=utf-8''%EC%A7%80%EC%9B%90%EC%84%9C_%EA%B2%80%ED%86%A0_2025-03-01.pdf`
	if !strings.Contains(cd, want) {
		t.Errorf("Expected encoded filename in %q", cd)
	}
	if !strings.HasPrefix(cd, "attachment; ") {
		t.Errorf("Expected attachment disposition, got %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected PDF bytes")
	}
}

func TestExportLegacyHTML(t *testing.T) {
	rast := &fakeRasterizer{}
	s := newTestServer(t, &fakeBackend{}, rast)

	page := `<html><head><style>p{}</style></head><body><main id="report-root"><p>결과</p><button>PDF 저장</button></main></body></html>`
	body, _ := json.Marshal(ExportRequest{HTML: page})
	rec := do(t, s.Handler(), http.MethodPost, "/api/export", body, "application/json")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rast.calls != 1 {
		t.Errorf("Expected one rasterization, got %d", rast.calls)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "2025-03-01.pdf") {
		t.Error("Expected dated filename")
	}
}

var revisionAttr = regexp.MustCompile(`data-revision="([0-9a-f]+)"`)

func pageRevision(t *testing.T, page string) string {
	t.Helper()
	m := revisionAttr.FindStringSubmatch(page)
	if m == nil {
		t.Fatal("Expected the page to carry its revision")
	}
	return m[1]
}

func TestExportFollowsPageRevision(t *testing.T) {
	other := loadFixture(t)
	other.OverallScore = 51

	tests := []struct {
		name       string
		after      func(s *Server)
		pageFrom   func(t *testing.T, s *Server) string
		wantLegacy bool
	}{
		{
			name:       "page shows displayed result",
			pageFrom:   servedPage,
			wantLegacy: false,
		},
		{
			name:       "result cleared after render",
			after:      func(s *Server) { s.SetDisplayed(nil) },
			pageFrom:   servedPage,
			wantLegacy: true,
		},
		{
			name:       "result replaced after render",
			after:      func(s *Server) { s.SetDisplayed(other) },
			pageFrom:   servedPage,
			wantLegacy: true,
		},
		{
			name:       "standalone page of another result",
			pageFrom:   standalonePage(other),
			wantLegacy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rast := &fakeRasterizer{}
			s := newTestServer(t, &fakeBackend{}, rast)
			s.SetDisplayed(loadFixture(t))

			page := tt.pageFrom(t, s)
			if tt.after != nil {
				tt.after(s)
			}

			body, _ := json.Marshal(ExportRequest{HTML: page, Revision: pageRevision(t, page)})
			rec := do(t, s.Handler(), http.MethodPost, "/api/export", body, "application/json")
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if legacy := !rast.profile.PageBreaks; legacy != tt.wantLegacy {
				t.Errorf("Expected legacy=%v, got %v", tt.wantLegacy, legacy)
			}
		})
	}
}

func standalonePage(result *types.AnalysisResult) func(*testing.T, *Server) string {
	return func(t *testing.T, _ *Server) string {
		t.Helper()
		page, err := report.RenderInteractive(result, report.Options{})
		if err != nil {
			t.Fatal(err)
		}
		return string(page)
	}
}

func servedPage(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s.Handler(), http.MethodGet, "/report", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestExportAfterClearUsesPostedMarkup(t *testing.T) {
	rast := &fakeRasterizer{}
	s := newTestServer(t, &fakeBackend{}, rast)
	s.SetDisplayed(loadFixture(t))
	h := s.Handler()

	page := servedPage(t, s)
	if rec := do(t, h, http.MethodDelete, "/api/report", nil, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	body, _ := json.Marshal(ExportRequest{Title: "지원서 검토", HTML: page, Revision: pageRevision(t, page)})
	rec := do(t, h, http.MethodPost, "/api/export", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected the page markup to be exported, got %d: %s", rec.Code, rec.Body.String())
	}
	if rast.profile.PageBreaks {
		t.Error("Expected the captured page profile")
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"preflight from disk", http.MethodOptions, "null", http.StatusNoContent, "null"},
		{"preflight from elsewhere", http.MethodOptions, "https://evil.example", http.StatusForbidden, ""},
		{"export from disk", http.MethodPost, "null", http.StatusOK, "null"},
		{"same origin", http.MethodPost, "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeBackend{}, nil)
			s.AllowedOrigins = []string{"null"}
			s.SetDisplayed(loadFixture(t))

			req := httptest.NewRequest(tt.method, "/api/export", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Expected Allow-Origin %q, got %q", tt.wantAllow, got)
			}
			if tt.wantAllow != "" && !strings.Contains(rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
				t.Error("Expected Content-Disposition to be exposed")
			}
		})
	}
}

func TestExportNothingToExport(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/api/export", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestExportFailure(t *testing.T) {
	rast := &fakeRasterizer{err: context.DeadlineExceeded}
	s := newTestServer(t, &fakeBackend{}, rast)
	s.SetDisplayed(loadFixture(t))

	rec := do(t, s.Handler(), http.MethodPost, "/api/export", nil, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec).Message; msg != present.MessageExportError {
		t.Errorf("Expected fixed retry message, got %q", msg)
	}
}

func TestExportInProgress(t *testing.T) {
	rast := &fakeRasterizer{started: make(chan struct{}), release: make(chan struct{})}
	s := newTestServer(t, &fakeBackend{}, rast)
	s.SetDisplayed(loadFixture(t))
	h := s.Handler()

	done := make(chan int, 1)
	go func() {
		done <- do(t, h, http.MethodPost, "/api/export", nil, "").Code
	}()
	<-rast.started

	rec := do(t, h, http.MethodPost, "/api/export", nil, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 while busy, got %d", rec.Code)
	}
	if msg := decodeError(t, rec).Message; msg != present.MessageExportBusy {
		t.Errorf("Expected busy message, got %q", msg)
	}

	close(rast.release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("Expected first export to succeed, got %d", code)
	}
}

func TestOrganizationProxy(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/organizations", nil, "")
	var codes []string
	if err := json.Unmarshal(rec.Body.Bytes(), &codes); err != nil || len(codes) != 2 {
		t.Errorf("Expected two codes, got %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/organizations/NHIS", nil, "")
	if !strings.Contains(rec.Body.String(), "국민건강보험공단") {
		t.Errorf("Unexpected organization body %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/organizations/NOPE", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 passthrough, got %d", rec.Code)
	}
}

func TestUploadProxy(t *testing.T) {
	fb := &fakeBackend{}
	s := newTestServer(t, fb, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "resume.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 body"))
	_ = mw.Close()

	rec := do(t, s.Handler(), http.MethodPost, "/api/upload/pdf", buf.Bytes(), mw.FormDataContentType())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(fb.uploaded) != "%PDF-1.4 body" {
		t.Errorf("Unexpected upload %q", fb.uploaded)
	}

	rec = do(t, s.Handler(), http.MethodPost, "/api/upload/pdf", []byte("x"), "text/plain")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non multipart body, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		healthErr  error
		wantStatus int
		wantState  string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"backend down", errors.NewNetworkError(errors.ErrCodeBackendUnreachable, "refused", nil), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeBackend{healthErr: tt.healthErr}, nil)
			rec := do(t, s.Handler(), http.MethodGet, "/health", nil, "")

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp["status"] != tt.wantState {
				t.Errorf("Expected status %s, got %v", tt.wantState, resp["status"])
			}
			if resp["environment"] != "test" {
				t.Errorf("Expected environment test, got %v", resp["environment"])
			}
			for _, key := range []string{"service", "version", "backend", "circuit_breaker"} {
				if _, ok := resp[key]; !ok {
					t.Errorf("Expected %s in health response", key)
				}
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/stats", nil, "")

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	exp, ok := resp["export"].(map[string]any)
	if !ok {
		t.Fatal("Expected export stats")
	}
	if exp["busy"] != false || exp["state"] != "idle" {
		t.Errorf("Unexpected export stats %v", exp)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	s.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 2, ByIP: true}
	s.RateLimiter = NewRateLimiter(1, time.Minute, 2, errors.Discard())
	defer s.RateLimiter.Close()
	h := s.Handler()

	for i := range 2 {
		if rec := do(t, h, http.MethodGet, "/stats", nil, ""); rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodGet, "/stats", nil, ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/health", nil, ""); rec.Code != http.StatusOK {
		t.Errorf("Health must not be rate limited, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Another client should have its own bucket, got %d", rec.Code)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, nil)
	s.MaxRequestSize = 16
	rec := do(t, s.Handler(), http.MethodPost, "/api/report", bytes.Repeat([]byte("a"), 64), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec).Message; !strings.Contains(msg, "too large") {
		t.Errorf("Expected size message, got %q", msg)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.2, 10.0.0.1"}, "10.0.0.1:1234", "198.51.100.2"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.3"}, "10.0.0.1:1234", "198.51.100.3"},
		{"remote addr", nil, "192.0.2.9:5555", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{`보고서 "A"_2025-03-01.pdf`, "filename*=utf-8''%EB%B3%B4%EA%B3%A0%EC%84%9C%20%22A%22_2025-03-01.pdf"},
		{"report_2025-03-01.pdf", "filename=report_2025-03-01.pdf"},
		{"my report.pdf", `filename="my report.pdf"`},
	}
	for _, tt := range tests {
		got := contentDisposition(tt.name)
		if !strings.Contains(got, tt.encoded) {
			t.Errorf("Expected %s in %q", tt.encoded, got)
		}
		disposition, params, err := mime.ParseMediaType(got)
		if err != nil {
			t.Fatalf("Header %q does not parse: %v", got, err)
		}
		if disposition != "attachment" || params["filename"] != tt.name {
			t.Errorf("Expected attachment named %q, got %s %q", tt.name, disposition, params["filename"])
		}
	}
}

func TestResultWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "result.json")
	fixture, _ := os.ReadFile("../types/testdata/full_result.json")

	s := newTestServer(t, &fakeBackend{}, nil)
	s.WatchFile = target
	s.WatchDebounce = 20 * time.Millisecond
	if err := s.startResultWatcher(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer func() { _ = s.watcher.Stop() }()

	if s.Displayed() != nil {
		t.Fatal("Nothing should be displayed before the file exists")
	}

	if err := os.WriteFile(target, fixture, 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return s.Displayed() != nil })
	if s.Displayed().OverallScore != 78 {
		t.Errorf("Expected score 78, got %d", s.Displayed().OverallScore)
	}

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return s.Displayed() == nil })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func BenchmarkReportHandler(b *testing.B) {
	data, err := os.ReadFile("../types/testdata/full_result.json")
	if err != nil {
		b.Fatal(err)
	}
	result, err := types.DecodeResult(data)
	if err != nil {
		b.Fatal(err)
	}
	s := NewServer(&config.Config{}, ServerConfig{}, nil)
	s.SetDisplayed(result)
	h := s.Handler()

	for b.Loop() {
		req := httptest.NewRequest(http.MethodGet, "/report", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
