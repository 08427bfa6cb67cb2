package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"essaylens/internal/export"
	"essaylens/internal/present"
	"essaylens/internal/report"

	"github.com/charmbracelet/lipgloss"
)

// lineHeight converts pager lines to the px offsets the report view works in
const lineHeight = 20

type pagerKey int

const (
	keyNone pagerKey = iota
	keyDown
	keyUp
	keyPageDown
	keyPageUp
	keyTop
	keyCopy
	keyExport
	keyQuit
)

// parseKeys maps raw terminal input to pager keys
func parseKeys(buf []byte) []pagerKey {
	var keys []pagerKey
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == 0x1b && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				keys = append(keys, keyUp)
			case 'B':
				keys = append(keys, keyDown)
			case 'H':
				keys = append(keys, keyTop)
			}
			i += 2
			continue
		}
		switch b {
		case 'j', '\r', '\n':
			keys = append(keys, keyDown)
		case 'k':
			keys = append(keys, keyUp)
		case ' ', 'f':
			keys = append(keys, keyPageDown)
		case 'b':
			keys = append(keys, keyPageUp)
		case 't', 'g':
			keys = append(keys, keyTop)
		case 'c':
			keys = append(keys, keyCopy)
		case 'e':
			keys = append(keys, keyExport)
		case 'q', 0x03:
			keys = append(keys, keyQuit)
		}
	}
	return keys
}

// pager shows rendered report text one screen at a time and drives a
// report.View with the scroll position.
type pager struct {
	mu sync.Mutex

	lines  []string
	top    int
	height int
	out    io.Writer

	emitter *report.ScrollEmitter
	view    *report.View
	status  string
	showTop bool

	statusStyle lipgloss.Style
	hintStyle   lipgloss.Style

	exports sync.WaitGroup
}

func newPager(text string, height int, out io.Writer) *pager {
	if height < 2 {
		height = 2
	}
	return &pager{
		lines:       strings.Split(strings.TrimRight(text, "\n"), "\n"),
		height:      height,
		out:         out,
		emitter:     &report.ScrollEmitter{},
		statusStyle: lipgloss.NewStyle().Reverse(true),
		hintStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(present.Tokens.Muted)),
	}
}

// attach mounts view on the pager's scroll position
func (p *pager) attach(view *report.View) {
	p.view = view
	view.Mount(p.emitter)
}

// onEvent turns view events into the status line
func (p *pager) onEvent(ev report.Event) {
	p.mu.Lock()
	switch ev.Kind {
	case report.EventScrollTopShown:
		p.showTop = true
	case report.EventScrollTopHidden:
		p.showTop = false
	case report.EventCopied:
		p.status = present.LabelCopied
	case report.EventCopyReset:
		p.status = ""
	case report.EventCopyFailed:
		p.status = present.MessageCopyFailed
	case report.EventExportStarted:
		p.status = present.LabelExporting
	case report.EventExportDone:
		p.status = present.LabelExport + " ✓"
	case report.EventExportFailed:
		p.status = export.UserMessage(ev.Err)
	}
	p.mu.Unlock()
	p.draw()
}

func (p *pager) page() int {
	return p.height - 1
}

func (p *pager) maxTop() int {
	return max(0, len(p.lines)-p.page())
}

func (p *pager) scrollTo(top int) {
	p.mu.Lock()
	top = min(max(0, top), p.maxTop())
	changed := top != p.top
	p.top = top
	p.mu.Unlock()

	if changed {
		p.emitter.Emit(top * lineHeight)
	}
}

// handle applies one key and reports whether the pager should close
func (p *pager) handle(ctx context.Context, key pagerKey) bool {
	p.mu.Lock()
	top := p.top
	p.mu.Unlock()

	switch key {
	case keyDown:
		p.scrollTo(top + 1)
	case keyUp:
		p.scrollTo(top - 1)
	case keyPageDown:
		p.scrollTo(top + p.page())
	case keyPageUp:
		p.scrollTo(top - p.page())
	case keyTop:
		p.scrollTo(0)
	case keyCopy:
		if p.view != nil {
			_ = p.view.CopyModelAnswer(ctx)
		}
	case keyExport:
		if p.view != nil {
			p.exports.Add(1)
			go func() {
				defer p.exports.Done()
				_ = p.view.Handle().Export(ctx)
			}()
		}
	case keyQuit:
		return true
	}
	p.draw()
	return false
}

// run reads keys from in until quit, end of input or ctx is done
func (p *pager) run(ctx context.Context, in io.Reader) error {
	p.draw()
	buf := make([]byte, 16)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := in.Read(buf)
		for _, key := range parseKeys(buf[:n]) {
			if p.handle(ctx, key) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read terminal input: %w", err)
		}
	}
}

// wait blocks until running exports have finished
func (p *pager) wait() {
	p.exports.Wait()
}

func (p *pager) statusLine() string {
	hint := "j/k 이동 · c " + present.LabelCopy + " · e " + present.LabelExport + " · q 종료"
	if p.showTop {
		hint = "t " + present.LabelScrollTop + " · " + hint
	}
	line := fmt.Sprintf(" %d/%d ", min(p.top+p.page(), len(p.lines)), len(p.lines))
	if p.status != "" {
		line += p.statusStyle.Render(" "+p.status+" ") + " "
	}
	return line + p.hintStyle.Render(hint)
}

func (p *pager) draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	b.WriteString("\x1b[H\x1b[2J")
	end := min(p.top+p.page(), len(p.lines))
	for _, line := range p.lines[p.top:end] {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	for i := end - p.top; i < p.page(); i++ {
		b.WriteString("~\r\n")
	}
	b.WriteString(p.statusLine())
	_, _ = io.WriteString(p.out, b.String())
}
