// Package search finds and highlights query occurrences in rendered HTML.
//
// Matching is split from DOM work: Offsets locates matches in plain text,
// and the highlighter applies them to a parsed tree. Matches never span
// text-node boundaries; an occurrence broken by inline formatting is not
// found. That is a known limitation carried over deliberately.
package search

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Match is one located occurrence of a query inside a single text node.
// Indices are valid only until the document is re-rendered or re-searched.
type Match struct {
	Node   int    // text-node ordinal in document order
	Offset int    // byte offset within the node's text
	Length int    // byte length of the matched text
	Text   string // the matched text as it appears in the document
}

// Offsets returns the non-overlapping case-insensitive occurrences of query
// in text, in order. The query is matched literally. An empty query matches
// nothing.
func Offsets(text, query string) [][2]int {
	if query == "" || text == "" {
		return nil
	}
	re, err := compileQuery(query)
	if err != nil {
		return nil
	}
	idx := re.FindAllStringIndex(text, -1)
	out := make([][2]int, 0, len(idx))
	pos := 0
	for _, m := range idx {
		// Guard against a scan that fails to advance.
		if m[1] <= m[0] || m[0] < pos {
			continue
		}
		out = append(out, [2]int{m[0], m[1]})
		pos = m[1]
	}
	return out
}

func compileQuery(query string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + regexp.QuoteMeta(query))
}

// skippedElements are never searched: non-content text and controls the
// renderer injects.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Button: true,
}

// findTextMatches walks text nodes under the parsed fragment in document
// order and collects every match.
func findTextMatches(nodes []*html.Node, query string) []Match {
	var matches []Match
	ordinal := 0
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			if strings.TrimSpace(n.Data) != "" {
				for _, span := range Offsets(n.Data, query) {
					matches = append(matches, Match{
						Node:   ordinal,
						Offset: span[0],
						Length: span[1] - span[0],
						Text:   n.Data[span[0]:span[1]],
					})
				}
			}
			ordinal++
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return matches
}

// highlight rebuilds every text node containing matches as an interleaving
// of plain text and <mark> elements. The match with index current (0-based,
// -1 for none) additionally carries the "current" class. Returns the match
// count.
func highlight(nodes []*html.Node, query string, current int) int {
	type hit struct {
		node  *html.Node
		spans [][2]int
		first int // global index of this node's first match
	}

	var hits []hit
	total := 0
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			if strings.TrimSpace(n.Data) == "" {
				return
			}
			spans := Offsets(n.Data, query)
			if len(spans) > 0 {
				hits = append(hits, hit{node: n, spans: spans, first: total})
				total += len(spans)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for _, n := range nodes {
		collect(n)
	}

	// Mutate after the walk so freshly inserted marks are never revisited.
	for _, h := range hits {
		replaceWithMarks(h.node, h.spans, h.first, current)
	}
	return total
}

// replaceWithMarks swaps a text node for the interleaved sequence of plain
// text and highlight markers, preserving original order.
func replaceWithMarks(textNode *html.Node, spans [][2]int, firstIndex, current int) {
	parent := textNode.Parent
	if parent == nil {
		return
	}
	data := textNode.Data

	var seq []*html.Node
	pos := 0
	for i, span := range spans {
		if span[0] > pos {
			seq = append(seq, &html.Node{Type: html.TextNode, Data: data[pos:span[0]]})
		}
		seq = append(seq, markNode(data[span[0]:span[1]], firstIndex+i, firstIndex+i == current))
		pos = span[1]
	}
	if pos < len(data) {
		seq = append(seq, &html.Node{Type: html.TextNode, Data: data[pos:]})
	}

	for _, n := range seq {
		parent.InsertBefore(n, textNode)
	}
	parent.RemoveChild(textNode)
}

func markNode(text string, index int, isCurrent bool) *html.Node {
	class := "search-hit"
	if isCurrent {
		class += " current"
	}
	mark := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr: []html.Attribute{
			{Key: "class", Val: class},
			{Key: "id", Val: markID(index)},
		},
	}
	mark.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return mark
}

func markID(index int) string {
	return "search-match-" + strconv.Itoa(index)
}
