// Package analyze scores markdown for readability and SEO. Everything here
// is a pure function over the source text; applying results to a UI is the
// caller's problem.
package analyze

import (
	"bytes"
	"math"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// wordsPerMinute is the reading-speed assumption behind the reading time.
const wordsPerMinute = 200

// Report is the full analysis of one markdown document.
type Report struct {
	Words          int     `json:"words"`
	Sentences      int     `json:"sentences"`
	Syllables      int     `json:"syllables"`
	ReadingMinutes int     `json:"reading_minutes"`
	Flesch         float64 `json:"flesch"`

	Headings   [6]int `json:"headings"` // index 0 = h1
	Links      int    `json:"links"`
	Images     int    `json:"images"`
	CodeBlocks int    `json:"code_blocks"`
	Lists      int    `json:"lists"`

	Score       int      `json:"score"` // 0-100 composite
	Suggestions []string `json:"suggestions"`
}

// Analyze computes the full report for a markdown source.
func Analyze(source string) Report {
	var r Report

	st := countStructure(source)
	r.Headings = st.headings
	r.Links = st.links
	r.Images = st.images
	r.CodeBlocks = st.codeBlocks
	r.Lists = st.lists

	plain := st.plainText
	r.Words = len(strings.Fields(plain))
	r.Sentences = countSentences(plain)
	r.Syllables = countTextSyllables(plain)
	r.ReadingMinutes = readingMinutes(r.Words)
	r.Flesch = fleschScore(r.Words, r.Sentences, r.Syllables)

	r.Score, r.Suggestions = composite(r)
	return r
}

func readingMinutes(words int) int {
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

// fleschScore is the Flesch Reading Ease formula, clamped to [0, 100].
func fleschScore(words, sentences, syllables int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	score := 206.835 -
		1.015*(float64(words)/float64(sentences)) -
		84.6*(float64(syllables)/float64(words))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func countSentences(plain string) int {
	n := 0
	inTerminator := false
	for _, r := range plain {
		switch r {
		case '.', '!', '?':
			if !inTerminator {
				n++
				inTerminator = true
			}
		default:
			inTerminator = false
		}
	}
	if n == 0 && strings.TrimSpace(plain) != "" {
		n = 1
	}
	return n
}

func countTextSyllables(plain string) int {
	total := 0
	for _, word := range strings.Fields(plain) {
		total += Syllables(word)
	}
	return total
}

// Syllables estimates the syllable count of a single word by counting
// vowel groups, with silent trailing "e" stripped ("-le" endings keep
// theirs). Always at least 1 for a word containing letters.
func Syllables(word string) int {
	var letters []rune
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 0
	}

	// Silent e: "make" has one syllable, but "table"'s -le is voiced.
	if len(letters) >= 3 && letters[len(letters)-1] == 'e' &&
		!isVowel(letters[len(letters)-2]) &&
		letters[len(letters)-2] != 'l' {
		letters = letters[:len(letters)-1]
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// structure holds the counts gathered in a single AST walk.
type structure struct {
	headings   [6]int
	links      int
	images     int
	codeBlocks int
	lists      int
	plainText  string
}

// countStructure parses the markdown once and walks the AST for structural
// counts plus the plain text used by the readability metrics.
func countStructure(source string) structure {
	var st structure
	src := []byte(source)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	var plain bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level >= 1 && node.Level <= 6 {
				st.headings[node.Level-1]++
			}
		case *ast.Link, *ast.AutoLink:
			st.links++
		case *ast.Image:
			st.images++
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			st.codeBlocks++
			return ast.WalkSkipChildren, nil
		case *ast.List:
			st.lists++
		case *ast.Text:
			plain.Write(node.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				plain.WriteByte('\n')
			}
		case *ast.Paragraph, *ast.Blockquote:
			// Block boundary: keep words from running together.
			plain.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})

	st.plainText = plain.String()
	return st
}

// Point allocations for the composite score. The five criteria sum to 100.
const (
	maxContentPoints    = 20
	maxHeadingPoints    = 25
	maxLinkPoints       = 15
	maxReadabilityScore = 20
	maxFormattingPoints = 20
)

// composite folds the report into a 0-100 score plus suggestions for every
// criterion that fell short. Adding an h1, another h2, a link, or a list
// never lowers the score.
func composite(r Report) (int, []string) {
	score := 0
	var tips []string

	// Content length.
	switch {
	case r.Words >= 300:
		score += maxContentPoints
	case r.Words >= 100:
		score += 10
		tips = append(tips, "Aim for at least 300 words of body content.")
	case r.Words > 0:
		score += 5
		tips = append(tips, "The document is very short; add more content.")
	default:
		tips = append(tips, "The document has no readable content.")
	}

	// Heading structure.
	headingPoints := 0
	if r.Headings[0] >= 1 {
		headingPoints += 10
	} else {
		tips = append(tips, "Add a top-level (H1) title.")
	}
	switch {
	case r.Headings[1] >= 2:
		headingPoints += 10
	case r.Headings[1] == 1:
		headingPoints += 5
		tips = append(tips, "Break the content into more H2 sections.")
	default:
		tips = append(tips, "Use H2 subheadings to structure the content.")
	}
	if r.Headings[2] >= 1 {
		headingPoints += 5
	}
	if headingPoints > maxHeadingPoints {
		headingPoints = maxHeadingPoints
	}
	score += headingPoints

	// Links.
	switch {
	case r.Links >= 3:
		score += maxLinkPoints
	case r.Links >= 1:
		score += 8
		tips = append(tips, "Add a few more links to related material.")
	default:
		tips = append(tips, "Add links to related material.")
	}

	// Readability.
	switch {
	case r.Words == 0:
		// no points, already flagged above
	case r.Flesch >= 60:
		score += maxReadabilityScore
	case r.Flesch >= 30:
		score += 12
		tips = append(tips, "Shorten sentences to improve readability.")
	default:
		score += 5
		tips = append(tips, "The text is hard to read; use shorter sentences and simpler words.")
	}

	// Formatting elements.
	formatting := 0
	if r.Lists >= 1 {
		formatting += 7
	} else {
		tips = append(tips, "Use bullet or numbered lists where appropriate.")
	}
	if r.CodeBlocks >= 1 {
		formatting += 7
	}
	if r.Images >= 1 {
		formatting += 6
	} else {
		tips = append(tips, "Consider adding an image or diagram.")
	}
	if formatting > maxFormattingPoints {
		formatting = maxFormattingPoints
	}
	score += formatting

	if score > 100 {
		score = 100
	}
	return score, tips
}
