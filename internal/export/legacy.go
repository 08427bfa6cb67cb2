package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"essaylens/internal/errors"
	"essaylens/internal/present"
)

// ReportRootID is the root of a captured interactive page.
const ReportRootID = "report-root"

var legacyShell = template.Must(template.New("legacy").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{.Styles}}
</head>
<body style="margin:0;width:{{.Width}}px;background:#ffffff;">
<header id="capture-header" style="padding:16px 24px;border-bottom:2px solid {{.Accent}};">
<h1 style="margin:0;font-size:20px;">{{.Title}}</h1>
<p style="margin:4px 0 0;color:{{.Muted}};">{{.Date}}</p>
</header>
{{.Root}}
</body>
</html>
`))

type legacyPage struct {
	Title  string
	Date   string
	Width  int
	Accent template.CSS
	Muted  template.CSS
	Styles template.HTML
	Root   template.HTML
}

// CaptureLegacy snapshots the report root of an interactive page into a
// standalone document: interactive controls are stripped, page styles are
// kept and a title header is prepended.
func CaptureLegacy(page []byte, title string, date time.Time) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, errors.NewExportError(errors.ErrCodeExportFailed, "failed to parse report page", err)
	}

	root := findByID(doc, ReportRootID)
	if root == nil {
		return nil, errors.NewExportError(errors.ErrCodeNoRenderableRoot, "report page has no renderable root", nil)
	}

	clone := cloneNode(root)
	removeAll(findAll(clone, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		return n.DataAtom == atom.Button || n.DataAtom == atom.Script || hasAttr(n, "data-floating")
	}))

	var styles bytes.Buffer
	for _, style := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Style
	}) {
		if err := html.Render(&styles, cloneNode(style)); err != nil {
			return nil, errors.NewExportError(errors.ErrCodeExportFailed, "failed to copy page styles", err)
		}
	}

	var body bytes.Buffer
	if err := html.Render(&body, clone); err != nil {
		return nil, errors.NewExportError(errors.ErrCodeExportFailed, "failed to serialize report root", err)
	}

	var out bytes.Buffer
	err = legacyShell.Execute(&out, legacyPage{
		Title:  title,
		Date:   date.Format("2006-01-02"),
		Width:  A4WidthPx,
		Accent: template.CSS(present.Tokens.Primary),
		Muted:  template.CSS(present.Tokens.Muted),
		Styles: template.HTML(styles.String()),
		Root:   template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble captured page: %w", err)
	}
	return out.Bytes(), nil
}
