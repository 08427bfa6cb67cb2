// Package export turns an analysis into a downloadable A4 PDF.
package export

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"essaylens/internal/config"
	"essaylens/internal/errors"
	"essaylens/internal/present"
	"essaylens/internal/report"
	"essaylens/internal/types"
)

// State is the pipeline's position in the export lifecycle
type State string

const (
	StateIdle      State = "idle"
	StateBuilding  State = "building"
	StateRendering State = "rendering"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// ErrExportInProgress is returned when an export is already running.
var ErrExportInProgress = errors.NewExportError(errors.ErrCodeExportInProgress, "an export is already in progress", nil)

// Request describes what to export. Result takes precedence; InteractiveHTML
// is only used when no structured result is available.
type Request struct {
	Result          *types.AnalysisResult
	InteractiveHTML []byte
	Title           string
}

// Artifact is a finished, verified PDF
type Artifact struct {
	Filename string
	Data     []byte
	Pages    int
	Legacy   bool
}

// Verifier checks rasterizer output and returns its page count
type Verifier func(data []byte) (int, error)

// Config wires a Pipeline
type Config struct {
	Stage      Stage
	Rasterizer Rasterizer
	Verify     Verifier
	Now        func() time.Time

	Timeout           time.Duration
	DeviceScale       float64
	LegacyDeviceScale float64
	DefaultTitle      string

	OnStateChange func(State)
	Logger        *errors.Logger
}

// Pipeline runs at most one export at a time.
type Pipeline struct {
	cfg  Config
	busy atomic.Bool

	mu    sync.Mutex
	state State
}

// NewPipeline creates a pipeline, filling unset collaborators with defaults.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Stage == nil {
		cfg.Stage = &TempDirStage{}
	}
	if cfg.Verify == nil {
		cfg.Verify = VerifyPDF
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.DeviceScale <= 0 {
		cfg.DeviceScale = 2.0
	}
	if cfg.LegacyDeviceScale <= 0 {
		cfg.LegacyDeviceScale = 1.5
	}
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = present.DefaultDocumentTitle
	}
	if cfg.Logger == nil {
		cfg.Logger = errors.Discard()
	}
	return &Pipeline{cfg: cfg, state: StateIdle}
}

// Busy reports whether an export is in flight.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()

	p.cfg.Logger.Debug("Export state changed", "state", string(s))
	if p.cfg.OnStateChange != nil {
		p.cfg.OnStateChange(s)
	}
}

// Export builds, rasterizes and verifies one PDF. A concurrent call returns
// ErrExportInProgress without doing any work. Cancelling ctx does not stop a
// started export; the configured timeout does.
func (p *Pipeline) Export(ctx context.Context, req Request) (*Artifact, error) {
	if p.cfg.Rasterizer == nil {
		return nil, errors.NewExportError(errors.ErrCodeExportFailed, "no rasterizer configured", nil)
	}
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer p.busy.Store(false)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	defer cancel()

	title := req.Title
	if title == "" {
		title = p.cfg.DefaultTitle
	}
	now := p.cfg.Now()

	p.setState(StateBuilding)
	doc, profile, legacy, err := p.build(req, title, now)
	if err != nil {
		return nil, p.fail(err)
	}

	fragment, err := p.cfg.Stage.Attach(ctx, doc)
	if err != nil {
		return nil, p.fail(errors.NewExportError(errors.ErrCodeExportFailed, "failed to stage document", err))
	}
	defer func() {
		if err := fragment.Detach(); err != nil {
			p.cfg.Logger.Warn("Failed to detach export fragment", "error", err)
		}
	}()

	p.setState(StateRendering)
	data, err := p.cfg.Rasterizer.Rasterize(ctx, fragment, profile)
	if err != nil {
		return nil, p.fail(errors.NewExportError(errors.ErrCodeExportFailed, "rasterizer failed", err))
	}

	pages, err := p.cfg.Verify(data)
	if err != nil {
		return nil, p.fail(errors.NewExportError(errors.ErrCodeExportFailed, "rasterizer produced an invalid PDF", err))
	}

	p.setState(StateDone)
	return &Artifact{
		Filename: Filename(title, now, p.cfg.DefaultTitle),
		Data:     data,
		Pages:    pages,
		Legacy:   legacy,
	}, nil
}

func (p *Pipeline) build(req Request, title string, now time.Time) ([]byte, Profile, bool, error) {
	switch {
	case req.Result != nil:
		doc, err := report.RenderPrint(req.Result, report.Options{Title: title})
		if err != nil {
			return nil, Profile{}, false, errors.NewExportError(errors.ErrCodeExportFailed, "failed to render print document", err)
		}
		if !HasElementID(doc, report.PrintRootID) {
			return nil, Profile{}, false, errors.NewExportError(errors.ErrCodeNoRenderableRoot, "print document has no renderable root", nil)
		}
		return doc, PrimaryProfile(p.cfg.DeviceScale), false, nil

	case len(req.InteractiveHTML) > 0:
		doc, err := CaptureLegacy(req.InteractiveHTML, title, now)
		if err != nil {
			return nil, Profile{}, true, err
		}
		return doc, LegacyProfile(p.cfg.LegacyDeviceScale), true, nil

	default:
		return nil, Profile{}, false, errors.NewExportError(errors.ErrCodeExportFailed, "nothing to export", nil)
	}
}

func (p *Pipeline) fail(err error) error {
	p.setState(StateFailed)
	p.cfg.Logger.LogError(err, "Export failed")
	p.setState(StateIdle)

	if errors.IsType(err, errors.ErrorTypeExport) {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewExportError(errors.ErrCodeExportFailed, "export timed out", err)
	}
	return errors.NewExportError(errors.ErrCodeExportFailed, fmt.Sprintf("export failed: %v", err), err)
}

// UserMessage is what the user sees after any export failure.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.HasCode(err, errors.ErrCodeExportInProgress) {
		return present.MessageExportBusy
	}
	return present.MessageExportError
}

// ConfigFrom maps the export section of the application config onto a
// pipeline Config backed by headless Chrome.
func ConfigFrom(cfg config.ExportConfig, logger *errors.Logger) Config {
	c := Config{
		Rasterizer:        NewChromiumRasterizer(cfg.ChromePath, cfg.Timeout),
		Timeout:           cfg.Timeout,
		DeviceScale:       cfg.DeviceScale,
		LegacyDeviceScale: cfg.LegacyDeviceScale,
		DefaultTitle:      cfg.DefaultTitle,
		Logger:            logger,
	}
	if !cfg.Verify {
		c.Verify = headerOnly
	}
	return c
}

// headerOnly accepts anything that starts like a PDF without parsing it.
func headerOnly(data []byte) (int, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, fmt.Errorf("missing PDF header")
	}
	return 0, nil
}
