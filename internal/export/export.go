// Package export turns the active document into downloadable files. Every
// format is a stateless transform of either the raw markdown source or the
// rendered HTML.
package export

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// A File is a finished export ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Markdown returns the last-loaded source byte-for-byte.
func Markdown(source, title string) File {
	return File{
		Name:        safeName(title) + ".md",
		ContentType: "text/markdown; charset=utf-8",
		Data:        []byte(source),
	}
}

// Text extracts the rendered tree's text content.
func Text(renderedHTML, title string) (File, error) {
	text, err := extractText(renderedHTML)
	if err != nil {
		return File{}, fmt.Errorf("extract text: %w", err)
	}
	return File{
		Name:        safeName(title) + ".txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(text),
	}, nil
}

// HTML builds a standalone document embedding the rendered content with
// inlined styling for the given theme. The stylesheet includes print rules,
// so "export to PDF" is the browser's print dialog over this document.
func HTML(renderedHTML, title, theme string) File {
	var doc strings.Builder
	doc.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	doc.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	doc.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	doc.WriteString("<style>\n" + themeCSS(theme) + "\n</style>\n")
	doc.WriteString("</head>\n<body>\n<main class=\"content\">\n")
	doc.WriteString(renderedHTML)
	doc.WriteString("\n</main>\n</body>\n</html>\n")

	return File{
		Name:        safeName(title) + ".html",
		ContentType: "text/html; charset=utf-8",
		Data:        []byte(doc.String()),
	}
}

// Word wraps the rendered content in the vendor namespace shim that word
// processors recognize as a Word HTML document.
func Word(renderedHTML, title string) File {
	var doc strings.Builder
	doc.WriteString(`<html xmlns:o="urn:schemas-microsoft-com:office:office" ` +
		`xmlns:w="urn:schemas-microsoft-com:office:word" ` +
		`xmlns="http://www.w3.org/TR/REC-html40">` + "\n")
	doc.WriteString("<head><meta charset=\"utf-8\"><title>" + html.EscapeString(title) + "</title>")
	doc.WriteString("<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View></w:WordDocument></xml><![endif]-->")
	doc.WriteString("</head>\n<body>\n")
	doc.WriteString(renderedHTML)
	doc.WriteString("\n</body>\n</html>\n")

	return File{
		Name:        safeName(title) + ".doc",
		ContentType: "application/msword",
		Data:        []byte(doc.String()),
	}
}

// blockElements get their own lines in text extraction.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true, atom.Br: true,
}

// extractText walks the rendered tree collecting visible text, with
// newlines at block boundaries. Script/style content and injected controls
// are skipped.
func extractText(renderedHTML string) (string, error) {
	body := &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := xhtml.ParseFragment(strings.NewReader(renderedHTML), body)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var visit func(*xhtml.Node)
	visit = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Button:
				return
			}
			if blockElements[n.DataAtom] && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte('\n')
			}
		}
		if n.Type == xhtml.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		if n.Type == xhtml.ElementNode && blockElements[n.DataAtom] && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return strings.TrimSpace(sb.String()), nil
}

// safeName makes a title usable as a filename.
func safeName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "document"
	}
	var sb strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			sb.WriteByte('-')
		}
	}
	name := strings.Trim(sb.String(), "-")
	if name == "" {
		return "document"
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return strings.ToLower(name)
}
