package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	webPolicy  = bluemonday.NewPolicy()
)

func init() {
	// Tags the chat frontend is allowed to render
	webPolicy.AllowElements(
		"p", "br", "b", "strong", "i", "em", "u", "s", "del",
		"code", "pre", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	webPolicy.AllowAttrs("href", "target", "rel").OnElements("a")
	webPolicy.AllowAttrs("class").OnElements("code")
	webPolicy.RequireNoFollowOnLinks(true)
}

// MarkdownToSafeHTML renders LLM markdown output into sanitized HTML
// suitable for direct insertion into the chat frontend.
func MarkdownToSafeHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	sanitized := webPolicy.SanitizeBytes(unsafeHTML)

	return string(sanitized)
}
