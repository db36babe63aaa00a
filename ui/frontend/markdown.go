package frontend

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce     sync.Once
	markdownRenderer goldmark.Markdown
	markdownPolicy   *bluemonday.Policy
)

// markdown renders a motorcycle description written in Markdown to
// sanitized HTML. Raw HTML in the source is escaped by goldmark and
// whatever survives is filtered by bluemonday's UGC policy.
func markdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	markdownOnce.Do(func() {
		markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
		markdownPolicy = bluemonday.UGCPolicy()
		markdownPolicy.RequireNoFollowOnLinks(true)
		markdownPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})

	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(markdownPolicy.SanitizeBytes(buf.Bytes()))
}
