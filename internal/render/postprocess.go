package render

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// postprocess applies deterministic DOM transforms to sanitized HTML:
//   - links to other hosts open in a new tab with rel protection
//   - images load lazily with async decoding
//   - tables are wrapped in a horizontal scroll container
//   - code blocks get a copy-to-clipboard control
func postprocess(fragment, host string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	// Collect first, mutate after: wrapping and appending while walking
	// would revisit freshly inserted nodes.
	var links, images, tables, pres []*html.Node
	for _, n := range nodes {
		walk(n, func(el *html.Node) {
			switch el.DataAtom {
			case atom.A:
				links = append(links, el)
			case atom.Img:
				images = append(images, el)
			case atom.Table:
				tables = append(tables, el)
			case atom.Pre:
				pres = append(pres, el)
			}
		})
	}

	for _, a := range links {
		if isExternalLink(attrValue(a, "href"), host) {
			setAttr(a, "target", "_blank")
			setAttr(a, "rel", "noopener noreferrer")
		}
	}
	for _, img := range images {
		setAttr(img, "loading", "lazy")
		setAttr(img, "decoding", "async")
		addClass(img, "md-img")
	}
	for _, table := range tables {
		wrapNode(table, "div", "table-wrap")
	}
	for _, pre := range pres {
		attachCopyButton(pre)
	}

	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// parseFragment parses body-context HTML into its top-level nodes.
func parseFragment(fragment string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	return html.ParseFragment(strings.NewReader(fragment), body)
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// isExternalLink reports whether href points at a host other than ours.
// Relative links and fragment anchors are never external.
func isExternalLink(href, host string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if host == "" {
		return true
	}
	return !strings.EqualFold(u.Host, host)
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func addClass(n *html.Node, class string) {
	existing := attrValue(n, "class")
	for _, c := range strings.Fields(existing) {
		if c == class {
			return
		}
	}
	if existing == "" {
		setAttr(n, "class", class)
		return
	}
	setAttr(n, "class", existing+" "+class)
}

// wrapNode replaces n with <tag class=...> containing n.
func wrapNode(n *html.Node, tag, class string) {
	parent := n.Parent
	if parent == nil {
		return
	}
	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	parent.InsertBefore(wrapper, n)
	parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

// attachCopyButton appends a copy control to a code block carrying the code
// text in a data attribute so the client can put it on the clipboard.
func attachCopyButton(pre *html.Node) {
	code := textContent(pre)
	btn := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr: []html.Attribute{
			{Key: "class", Val: "copy-code"},
			{Key: "type", Val: "button"},
			{Key: "data-code", Val: code},
			{Key: "aria-label", Val: "Copy code"},
		},
	}
	btn.AppendChild(&html.Node{Type: html.TextNode, Data: "Copy"})
	pre.AppendChild(btn)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return sb.String()
}
