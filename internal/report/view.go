package report

import (
	"context"
	"sync"
	"time"

	"essaylens/internal/errors"
	"essaylens/internal/present"
	"essaylens/internal/types"
)

// ScrollSource delivers viewport offsets to subscribed listeners
type ScrollSource interface {
	Subscribe(listener func(offset int)) (unsubscribe func())
}

// Timer is the part of *time.Timer the view needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc
type AfterFunc func(d time.Duration, f func()) Timer

// Handle is the single capability a view exposes to its host.
type Handle interface {
	Export(ctx context.Context) error
}

// EventKind identifies a view event
type EventKind string

const (
	EventScrollTopShown  EventKind = "scroll_top_shown"
	EventScrollTopHidden EventKind = "scroll_top_hidden"
	EventCopied          EventKind = "copied"
	EventCopyReset       EventKind = "copy_reset"
	EventCopyFailed      EventKind = "copy_failed"
	EventExportStarted   EventKind = "export_started"
	EventExportDone      EventKind = "export_done"
	EventExportFailed    EventKind = "export_failed"
)

// Event is reported to the view's observer
type Event struct {
	Kind    EventKind
	Message string
	Err     error
}

// ViewConfig wires a View to its collaborators
type ViewConfig struct {
	Result   *types.AnalysisResult
	Primary  Clipboard
	Fallback Clipboard
	Export   func(ctx context.Context) error
	OnEvent  func(Event)
	// AfterFunc defaults to time.AfterFunc.
	AfterFunc AfterFunc
}

// View is the stateful controller behind an interactive report session.
type View struct {
	mu sync.Mutex

	result   *types.AnalysisResult
	primary  Clipboard
	fallback Clipboard
	export   func(ctx context.Context) error
	onEvent  func(Event)
	after    AfterFunc

	unsubscribe   func()
	offset        int
	scrollVisible bool

	copied    bool
	copyTimer Timer
	copyGen   int
}

// NewView creates an unmounted view.
func NewView(cfg ViewConfig) *View {
	after := cfg.AfterFunc
	if after == nil {
		after = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	onEvent := cfg.OnEvent
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &View{
		result:   cfg.Result,
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		export:   cfg.Export,
		onEvent:  onEvent,
		after:    after,
	}
}

// Mount subscribes to scroll updates. Mounting twice replaces the subscription.
func (v *View) Mount(source ScrollSource) {
	v.mu.Lock()
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
	v.mu.Unlock()

	unsubscribe := source.Subscribe(v.onScroll)

	v.mu.Lock()
	v.unsubscribe = unsubscribe
	v.mu.Unlock()
}

// Unmount releases the scroll subscription and any pending copy timer.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	if v.copyTimer != nil {
		v.copyTimer.Stop()
		v.copyTimer = nil
	}
	v.copyGen++
	v.copied = false
}

func (v *View) onScroll(offset int) {
	v.mu.Lock()
	v.offset = offset
	visible := offset > present.ScrollTopThreshold
	changed := visible != v.scrollVisible
	v.scrollVisible = visible
	v.mu.Unlock()

	if !changed {
		return
	}
	if visible {
		v.onEvent(Event{Kind: EventScrollTopShown})
	} else {
		v.onEvent(Event{Kind: EventScrollTopHidden})
	}
}

// Offset is the last reported scroll offset.
func (v *View) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// ScrollTopVisible reports whether the scroll-to-top control is shown.
func (v *View) ScrollTopVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollVisible
}

// Copied reports whether the copy confirmation is showing.
func (v *View) Copied() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copied
}

// CopyModelAnswer copies the model answer with the primary clipboard,
// falling back to the secondary one. Success starts the confirmation timer,
// replacing any running one.
func (v *View) CopyModelAnswer(ctx context.Context) error {
	if v.result == nil || v.result.ModelAnswer == "" {
		err := errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "there is no model answer to copy", nil)
		v.onEvent(Event{Kind: EventCopyFailed, Message: present.MessageCopyFailed, Err: err})
		return err
	}

	text := v.result.ModelAnswer
	var copyErr error
	for _, cb := range []Clipboard{v.primary, v.fallback} {
		if cb == nil {
			continue
		}
		if copyErr = cb.Copy(ctx, text); copyErr == nil {
			break
		}
	}
	if copyErr == nil && v.primary == nil && v.fallback == nil {
		copyErr = errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "no clipboard configured", nil)
	}
	if copyErr != nil {
		err := errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "failed to copy the model answer", copyErr)
		v.onEvent(Event{Kind: EventCopyFailed, Message: present.MessageCopyFailed, Err: err})
		return err
	}

	v.mu.Lock()
	if v.copyTimer != nil {
		v.copyTimer.Stop()
	}
	v.copyGen++
	gen := v.copyGen
	v.copied = true
	v.copyTimer = v.after(present.CopyConfirmDuration, func() { v.resetCopied(gen) })
	v.mu.Unlock()

	v.onEvent(Event{Kind: EventCopied})
	return nil
}

func (v *View) resetCopied(gen int) {
	v.mu.Lock()
	if gen != v.copyGen {
		v.mu.Unlock()
		return
	}
	v.copied = false
	v.copyTimer = nil
	v.mu.Unlock()

	v.onEvent(Event{Kind: EventCopyReset})
}

// Handle returns the host capability of this view.
func (v *View) Handle() Handle {
	return viewHandle{v: v}
}

type viewHandle struct {
	v *View
}

func (h viewHandle) Export(ctx context.Context) error {
	return h.v.runExport(ctx)
}

func (v *View) runExport(ctx context.Context) error {
	if v.export == nil {
		err := errors.NewExportError(errors.ErrCodeExportFailed, "export is not available", nil)
		v.onEvent(Event{Kind: EventExportFailed, Message: present.MessageExportError, Err: err})
		return err
	}
	v.onEvent(Event{Kind: EventExportStarted})
	if err := v.export(ctx); err != nil {
		v.onEvent(Event{Kind: EventExportFailed, Message: present.MessageExportError, Err: err})
		return err
	}
	v.onEvent(Event{Kind: EventExportDone})
	return nil
}

// ScrollEmitter is a ScrollSource driven by its owner.
type ScrollEmitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(int)
}

// Subscribe registers listener until the returned func is called.
func (e *ScrollEmitter) Subscribe(listener func(offset int)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[int]func(int))
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// Emit delivers offset to every listener.
func (e *ScrollEmitter) Emit(offset int) {
	e.mu.Lock()
	listeners := make([]func(int), 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(offset)
	}
}

// Listeners is the number of active subscriptions.
func (e *ScrollEmitter) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
