package export

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"essaylens/internal/errors"
	"essaylens/internal/report"
	"essaylens/internal/types"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type fakeFragment struct {
	doc      []byte
	detached bool
}

func (f *fakeFragment) URL() string { return "about:blank" }

func (f *fakeFragment) Detach() error {
	f.detached = true
	return nil
}

type fakeStage struct {
	mu        sync.Mutex
	fragments []*fakeFragment
	err       error
}

func (s *fakeStage) Attach(_ context.Context, doc []byte) (Fragment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &fakeFragment{doc: doc}
	s.fragments = append(s.fragments, f)
	return f, nil
}

func (s *fakeStage) last() *fakeFragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fragments) == 0 {
		return nil
	}
	return s.fragments[len(s.fragments)-1]
}

type fakeRasterizer struct {
	err      error
	started  chan struct{}
	release  chan struct{}
	profiles []Profile
	ctxErr   error
}

func (r *fakeRasterizer) Rasterize(ctx context.Context, _ Fragment, profile Profile) ([]byte, error) {
	r.profiles = append(r.profiles, profile)
	r.ctxErr = ctx.Err()
	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (s *stateRecorder) record(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *stateRecorder) get() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.states...)
}

func onePage([]byte) (int, error) { return 1, nil }

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

func newTestPipeline(stage Stage, rasterizer Rasterizer, verify Verifier, states *stateRecorder) *Pipeline {
	return NewPipeline(Config{
		Stage:         stage,
		Rasterizer:    rasterizer,
		Verify:        verify,
		Now:           func() time.Time { return fixedNow },
		OnStateChange: states.record,
	})
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExportStructuredResult(t *testing.T) {
	stage := &fakeStage{}
	rasterizer := &fakeRasterizer{}
	states := &stateRecorder{}
	p := newTestPipeline(stage, rasterizer, onePage, states)

	artifact, err := p.Export(context.Background(), Request{Result: loadFixture(t), Title: "NHIS 행정직"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if artifact.Filename != "NHIS_행정직_2025-03-01.pdf" {
		t.Errorf("Unexpected filename: %s", artifact.Filename)
	}
	if artifact.Legacy {
		t.Error("Structured export must not use the legacy path")
	}
	if artifact.Pages != 1 {
		t.Errorf("Expected 1 page, got %d", artifact.Pages)
	}

	expected := []State{StateBuilding, StateRendering, StateDone}
	if got := states.get(); !equalStates(got, expected) {
		t.Errorf("Expected states %v, got %v", expected, got)
	}
	if p.State() != StateDone {
		t.Errorf("Expected done state after success, got %s", p.State())
	}
	if p.Busy() {
		t.Error("Busy flag must clear after export")
	}

	frag := stage.last()
	if frag == nil || !frag.detached {
		t.Error("Fragment must be detached")
	}
	if !strings.Contains(string(frag.doc), `id="print-root"`) {
		t.Error("Staged document must be the print document")
	}

	profile := rasterizer.profiles[0]
	if profile.DeviceScale != 2.0 || !profile.PageBreaks {
		t.Errorf("Unexpected primary profile: %+v", profile)
	}
	if profile.PaperWidth != A4WidthInches || profile.Margin != MarginInches {
		t.Errorf("Expected A4 with 10mm margins, got %+v", profile)
	}
}

func TestExportLegacyCapture(t *testing.T) {
	page, err := report.RenderInteractive(loadFixture(t), report.Options{Title: "캡처"})
	if err != nil {
		t.Fatalf("Failed to render page: %v", err)
	}

	stage := &fakeStage{}
	rasterizer := &fakeRasterizer{}
	p := newTestPipeline(stage, rasterizer, onePage, &stateRecorder{})

	artifact, err := p.Export(context.Background(), Request{InteractiveHTML: page, Title: "캡처"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !artifact.Legacy {
		t.Error("Expected legacy artifact")
	}

	doc := string(stage.last().doc)
	if strings.Contains(doc, "<button") {
		t.Error("Captured document must not contain buttons")
	}
	if strings.Contains(doc, "data-floating") {
		t.Error("Captured document must not contain floating controls")
	}
	if strings.Contains(doc, "<script") {
		t.Error("Captured document must not contain scripts")
	}
	for _, want := range []string{`id="capture-header"`, "캡처", "2025-03-01", "<style>", `id="report-root"`} {
		if !strings.Contains(doc, want) {
			t.Errorf("Captured document missing %q", want)
		}
	}

	profile := rasterizer.profiles[0]
	if profile.DeviceScale != 1.5 || profile.PageBreaks {
		t.Errorf("Unexpected legacy profile: %+v", profile)
	}
}

func TestExportPrefersStructuredResult(t *testing.T) {
	stage := &fakeStage{}
	p := newTestPipeline(stage, &fakeRasterizer{}, onePage, &stateRecorder{})

	artifact, err := p.Export(context.Background(), Request{
		Result:          loadFixture(t),
		InteractiveHTML: []byte(`<main id="report-root">legacy</main>`),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if artifact.Legacy {
		t.Error("Legacy path must only be used without a structured result")
	}
	if !strings.HasPrefix(artifact.Filename, "자소서_분석결과_") {
		t.Errorf("Expected default title in filename, got %s", artifact.Filename)
	}
}

func TestExportFailures(t *testing.T) {
	tests := []struct {
		name         string
		req          func(t *testing.T) Request
		rasterErr    error
		verify       Verifier
		expectCode   string
		expectStaged bool
	}{
		{
			name:         "rasterizer error",
			req:          func(t *testing.T) Request { return Request{Result: loadFixture(t)} },
			rasterErr:    fmt.Errorf("chrome crashed"),
			verify:       onePage,
			expectCode:   errors.ErrCodeExportFailed,
			expectStaged: true,
		},
		{
			name:       "nothing supplied",
			req:        func(*testing.T) Request { return Request{} },
			verify:     onePage,
			expectCode: errors.ErrCodeExportFailed,
		},
		{
			name:       "missing root",
			req:        func(*testing.T) Request { return Request{InteractiveHTML: []byte("<div>no root</div>")} },
			verify:     onePage,
			expectCode: errors.ErrCodeNoRenderableRoot,
		},
		{
			name:         "verification failure",
			req:          func(t *testing.T) Request { return Request{Result: loadFixture(t)} },
			verify:       VerifyPDF,
			expectCode:   errors.ErrCodeExportFailed,
			expectStaged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := &fakeStage{}
			states := &stateRecorder{}
			p := newTestPipeline(stage, &fakeRasterizer{err: tt.rasterErr}, tt.verify, states)

			artifact, err := p.Export(context.Background(), tt.req(t))
			if artifact != nil {
				t.Error("Failed export must not produce an artifact")
			}
			if !errors.IsType(err, errors.ErrorTypeExport) {
				t.Fatalf("Expected export error, got %v", err)
			}
			if !errors.HasCode(err, tt.expectCode) {
				t.Errorf("Expected code %s, got %v", tt.expectCode, err)
			}
			if p.Busy() {
				t.Error("Busy flag must clear after failure")
			}
			if p.State() != StateIdle {
				t.Errorf("Expected idle after failure, got %s", p.State())
			}
			got := states.get()
			if len(got) < 2 || got[len(got)-2] != StateFailed || got[len(got)-1] != StateIdle {
				t.Errorf("Expected failed then idle, got %v", got)
			}

			frag := stage.last()
			if tt.expectStaged {
				if frag == nil || !frag.detached {
					t.Error("Staged fragment must be detached on failure")
				}
			} else if frag != nil {
				t.Error("Nothing should be staged")
			}
			if UserMessage(err) == "" {
				t.Error("Expected a user-facing message")
			}
		})
	}
}

func TestExportRejectsReentry(t *testing.T) {
	rasterizer := &fakeRasterizer{started: make(chan struct{}), release: make(chan struct{})}
	p := newTestPipeline(&fakeStage{}, rasterizer, onePage, &stateRecorder{})
	result := loadFixture(t)

	done := make(chan error, 1)
	go func() {
		_, err := p.Export(context.Background(), Request{Result: result})
		done <- err
	}()

	<-rasterizer.started
	if !p.Busy() {
		t.Error("Expected busy while rendering")
	}

	artifact, err := p.Export(context.Background(), Request{Result: result})
	if artifact != nil {
		t.Error("Re-entrant export must not produce an artifact")
	}
	if !stderrors.Is(err, ErrExportInProgress) {
		t.Errorf("Expected ErrExportInProgress, got %v", err)
	}
	if UserMessage(err) == UserMessage(fmt.Errorf("other")) {
		t.Error("Busy rejection should have its own message")
	}

	close(rasterizer.release)
	if err := <-done; err != nil {
		t.Fatalf("First export failed: %v", err)
	}
	if len(rasterizer.profiles) != 1 {
		t.Errorf("Expected exactly one rasterization, got %d", len(rasterizer.profiles))
	}
}

func TestExportIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rasterizer := &fakeRasterizer{}
	p := newTestPipeline(&fakeStage{}, rasterizer, onePage, &stateRecorder{})
	if _, err := p.Export(ctx, Request{Result: loadFixture(t)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rasterizer.ctxErr != nil {
		t.Errorf("Rasterizer saw a cancelled context: %v", rasterizer.ctxErr)
	}
}

func TestExportWithoutRasterizer(t *testing.T) {
	p := NewPipeline(Config{})
	if _, err := p.Export(context.Background(), Request{Result: loadFixture(t)}); err == nil {
		t.Error("Expected error without a rasterizer")
	}
	if p.Busy() {
		t.Error("Busy flag must not be set")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"", "자소서_분석결과_2025-03-01.pdf"},
		{"   ", "자소서_분석결과_2025-03-01.pdf"},
		{"NHIS 행정직", "NHIS_행정직_2025-03-01.pdf"},
		{`a/b\c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j_2025-03-01.pdf"},
		{"..", "자소서_분석결과_2025-03-01.pdf"},
		{"탭\t\n개행", "탭_개행_2025-03-01.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title, fixedNow, "자소서_분석결과"); got != tt.expected {
			t.Errorf("Filename(%q): expected %s, got %s", tt.title, tt.expected, got)
		}
	}
}

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestVerifyPDF(t *testing.T) {
	pages, err := VerifyPDF(minimalPDF())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pages != 1 {
		t.Errorf("Expected 1 page, got %d", pages)
	}

	bad := [][]byte{
		nil,
		[]byte("<html></html>"),
		[]byte("%PDF-1.4\nnot really a pdf"),
	}
	for _, data := range bad {
		if _, err := VerifyPDF(data); err == nil {
			t.Errorf("Expected error for %q", data)
		}
	}
}

func TestTempDirStage(t *testing.T) {
	stage := &TempDirStage{Dir: t.TempDir()}
	frag, err := stage.Attach(context.Background(), []byte("<html></html>"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(frag.URL(), "file://") {
		t.Errorf("Expected file URL, got %s", frag.URL())
	}

	ff := frag.(*fileFragment)
	if _, err := os.Stat(ff.path); err != nil {
		t.Errorf("Expected staged file: %v", err)
	}
	if err := frag.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if _, err := os.Stat(ff.dir); !os.IsNotExist(err) {
		t.Error("Expected staging directory removed")
	}
}

func TestHasElementID(t *testing.T) {
	if !HasElementID([]byte(`<div><section id="print-root"></section></div>`), "print-root") {
		t.Error("Expected root to be found")
	}
	if HasElementID([]byte(`<div id="other"></div>`), "print-root") {
		t.Error("Did not expect root")
	}
}
