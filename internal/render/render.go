// Package render converts markdown to sanitized, post-processed HTML.
//
// The pipeline is goldmark (GFM + syntax highlighting + emoji, raw HTML
// allowed) -> bluemonday sanitization -> DOM post-processing (external link
// marking, image lazy-loading, table wrappers, copy buttons).
package render

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown source into sanitized HTML. Safe for concurrent
// use; goldmark and bluemonday instances are reusable.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	host   string
}

// New builds a Renderer. publicHost is the host links are compared against
// when deciding whether they are external; a full base URL is accepted and
// reduced to its host. Empty means every absolute http(s) link counts as
// external.
func New(publicHost string) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			emoji.Emoji,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithGuessLanguage(true),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Raw HTML passes through the renderer and is cleaned by
			// bluemonday afterwards.
			html.WithUnsafe(),
		),
	)

	return &Renderer{
		md:     md,
		policy: sanitizePolicy(),
		host:   hostOnly(publicHost),
	}
}

// hostOnly reduces a base URL like "http://localhost:8090" to its host.
// Bare hosts pass through unchanged.
func hostOnly(publicHost string) string {
	if !strings.Contains(publicHost, "://") {
		return publicHost
	}
	u, err := url.Parse(publicHost)
	if err != nil {
		return publicHost
	}
	return u.Host
}

// sanitizePolicy is a UGC policy extended with what the rendered viewer
// needs: highlight classes, heading anchors, task lists, lazy images.
func sanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).
		OnElements("code", "span", "pre", "div", "mark", "ol", "ul", "li")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "mark")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td", "mark", "input")
	p.AllowAttrs("align").OnElements("th", "td")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowAttrs("loading", "decoding").OnElements("img")
	p.AllowAttrs("start").OnElements("ol")
	return p
}

// Render converts markdown to sanitized, post-processed HTML.
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	clean := r.policy.Sanitize(buf.String())

	out, err := postprocess(clean, r.host)
	if err != nil {
		return "", fmt.Errorf("postprocess html: %w", err)
	}
	return out, nil
}

// ErrorPlaceholder is shown in place of content when rendering fails. The
// rest of the page stays usable.
func ErrorPlaceholder() string {
	return `<div class="render-error">Failed to render this document. ` +
		`Check the markdown source for unsupported constructs.</div>`
}
