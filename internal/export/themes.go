package export

// themeCSS returns the inlined stylesheet for standalone HTML exports.
// Both themes share the layout rules; dark overrides the palette. Print
// rules make the browser's print dialog produce a clean PDF.
func themeCSS(theme string) string {
	css := baseCSS
	if theme == "dark" {
		css += darkCSS
	}
	return css + printCSS
}

const baseCSS = `body {
  margin: 0;
  font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
  line-height: 1.6;
  color: #1f2328;
  background: #ffffff;
}
.content {
  max-width: 800px;
  margin: 0 auto;
  padding: 2rem 1rem;
}
h1, h2, h3, h4, h5, h6 { line-height: 1.25; }
h1 { border-bottom: 1px solid #d8dee4; padding-bottom: .3em; }
a { color: #0969da; }
pre {
  position: relative;
  background: #f6f8fa;
  border-radius: 6px;
  padding: 1em;
  overflow-x: auto;
}
code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: .9em; }
blockquote {
  margin: 0;
  padding-left: 1em;
  border-left: 4px solid #d8dee4;
  color: #59636e;
}
.table-wrap { overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d8dee4; padding: .4em .8em; }
img.md-img { max-width: 100%; }
mark.search-hit { background: #fff8c5; }
mark.search-hit.current { background: #ffd33d; }
button.copy-code {
  position: absolute;
  top: .5em;
  right: .5em;
  font-size: .75em;
}
.render-error {
  border: 1px solid #cf222e;
  border-radius: 6px;
  padding: 1em;
  color: #cf222e;
}
`

const darkCSS = `body { color: #e6edf3; background: #0d1117; }
h1 { border-bottom-color: #30363d; }
a { color: #4493f8; }
pre { background: #161b22; }
blockquote { border-left-color: #30363d; color: #9198a1; }
th, td { border-color: #30363d; }
mark.search-hit { background: #5a4a00; color: inherit; }
mark.search-hit.current { background: #9e6a03; }
`

const printCSS = `@media print {
  body { color: #000; background: #fff; }
  .content { max-width: none; padding: 0; }
  button.copy-code { display: none; }
  a { color: inherit; text-decoration: underline; }
  pre { white-space: pre-wrap; }
}
`
