package present

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// Only paragraphs are recognised as blocks, so lists, headings and code
// blocks stay literal text and the output is safe inside <p> and <span>.
// Raw HTML is dropped by goldmark's default (safe) renderer.
var inlineMarkdown = goldmark.New(goldmark.WithParser(parser.NewParser(
	parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
	parser.WithInlineParsers(parser.DefaultInlineParsers()...),
	parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
)))

// RichText renders the inline Markdown emphasis found in AI free text
// (such as **강조**) as safe inline HTML. Paragraphs are joined with <br>.
func RichText(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := inlineMarkdown.Convert([]byte(s), &buf); err != nil {
		return template.HTML(html.EscapeString(s))
	}
	out := strings.TrimSpace(buf.String())
	out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	out = strings.ReplaceAll(out, "</p>\n<p>", "<br>")
	return template.HTML(out)
}
