package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Rasterizer turns a staged fragment into PDF bytes
type Rasterizer interface {
	Rasterize(ctx context.Context, fragment Fragment, profile Profile) ([]byte, error)
}

const suppressBreaksScript = `(function () {
  var s = document.createElement('style');
  s.textContent = '* { break-before: auto !important; break-after: auto !important; break-inside: auto !important; ' +
    'page-break-before: auto !important; page-break-after: auto !important; page-break-inside: auto !important; }';
  document.head.appendChild(s);
  return true;
})()`

// ChromiumRasterizer prints fragments with headless Chrome.
type ChromiumRasterizer struct {
	chromePath string
	timeout    time.Duration
}

// NewChromiumRasterizer uses chromePath, or the first Chrome found on the
// usual install paths when it is empty.
func NewChromiumRasterizer(chromePath string, timeout time.Duration) *ChromiumRasterizer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromiumRasterizer{chromePath: chromePath, timeout: timeout}
}

func (r *ChromiumRasterizer) Rasterize(ctx context.Context, fragment Fragment, profile Profile) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("allow-file-access-from-files", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(profile.ViewportWidth, profile.ViewportHeight, profile.DeviceScale, false),
		chromedp.Navigate(fragment.URL()),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if !profile.PageBreaks {
		var applied bool
		actions = append(actions, chromedp.Evaluate(suppressBreaksScript, &applied))
	}

	var pdf []byte
	actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		out, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(profile.PaperWidth).
			WithPaperHeight(profile.PaperHeight).
			WithMarginTop(profile.Margin).
			WithMarginBottom(profile.Margin).
			WithMarginLeft(profile.Margin).
			WithMarginRight(profile.Margin).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = out
		return nil
	}))

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, fmt.Errorf("chromium print: %w", err)
	}
	return pdf, nil
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
