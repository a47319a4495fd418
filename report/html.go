package report

import (
	"github.com/microcosm-cc/bluemonday"
	"gitlab.com/golang-commonmark/markdown"
)

var (
	renderer = markdown.New(
		markdown.HTML(false),
		markdown.Tables(true),
		markdown.Linkify(true),
		markdown.Typographer(false),
		markdown.XHTMLOutput(false),
	)
	policy = bluemonday.UGCPolicy()
)

// RenderHTML renders model markdown to sanitized HTML
func RenderHTML(src string) string {
	return policy.Sanitize(renderer.RenderToString([]byte(src)))
}
