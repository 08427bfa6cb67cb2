package report

import (
	"context"
	"io"

	"essaylens/internal/errors"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard copies text somewhere the user can paste it from
type Clipboard interface {
	Copy(ctx context.Context, text string) error
	Name() string
}

// SystemClipboard writes to the desktop clipboard through the platform
// tools (pbcopy, clip.exe, wl-copy, xclip or xsel).
type SystemClipboard struct {
	// Unsupported is set when no clipboard tool was found.
	Unsupported bool
	WriteAll    func(text string) error
}

// NewSystemClipboard creates a clipboard backed by the tools on PATH.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{
		Unsupported: clipboard.Unsupported,
		WriteAll:    clipboard.WriteAll,
	}
}

func (c *SystemClipboard) Name() string { return "system" }

func (c *SystemClipboard) Copy(ctx context.Context, text string) error {
	if c.Unsupported {
		return errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "no clipboard tool found on PATH", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.WriteAll(text); err != nil {
		return errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "clipboard write failed", err)
	}
	return nil
}

// OSC52Clipboard asks the terminal to set the clipboard through the
// OSC 52 escape sequence.
type OSC52Clipboard struct {
	Out io.Writer

	// Tmux wraps the sequence so tmux passes it on to the outer terminal.
	Tmux bool
}

func (c *OSC52Clipboard) Name() string { return "osc52" }

func (c *OSC52Clipboard) Copy(_ context.Context, text string) error {
	if c.Out == nil {
		return errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "no terminal attached", nil)
	}
	seq := osc52.New(text)
	if c.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(c.Out); err != nil {
		return errors.NewClipboardError(errors.ErrCodeClipboardUnavailable, "failed to write OSC 52 sequence", err)
	}
	return nil
}
