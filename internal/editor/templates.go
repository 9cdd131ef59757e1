package editor

import (
	"fmt"
	"sort"
)

// Template is a starting-point document for the editor.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

var templates = map[string]Template{
	"readme": {
		Name:        "readme",
		Description: "Project README skeleton",
		Content: `# Project Name

Short description of what this project does and who it is for.

## Installation

` + "```sh\n# installation command\n```" + `

## Usage

` + "```sh\n# usage example\n```" + `

## Contributing

Pull requests are welcome. For major changes, please open an issue first.

## License

[MIT](https://choosealicense.com/licenses/mit/)
`,
	},
	"notes": {
		Name:        "notes",
		Description: "Quick note-taking layout",
		Content: `# Notes — <topic>

## Key points

-

## Questions

-

## Follow-ups

- [ ]
`,
	},
	"blog-post": {
		Name:        "blog-post",
		Description: "Blog post with front sections",
		Content: `# Post Title

*Draft — <date>*

Opening hook: why should the reader care?

## Background

## The main idea

## Wrapping up

Call to action or closing thought.
`,
	},
	"meeting": {
		Name:        "meeting",
		Description: "Meeting minutes",
		Content: `# Meeting — <date>

**Attendees:**

## Agenda

1.

## Decisions

-

## Action items

- [ ] Owner — task
`,
	},
}

// Templates lists the built-in templates sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TemplateByName returns a template's content.
func TemplateByName(name string) (Template, error) {
	t, ok := templates[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q", name)
	}
	return t, nil
}
