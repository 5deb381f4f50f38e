package assistant

import "strings"

// Section is one "### " headed part of a model answer.
type Section struct {
	Title string
	Body  string
}

// Sections splits markdown on "### " headings. Text before the first
// heading becomes a section with an empty title; blank sections are dropped.
func Sections(markdown string) []Section {
	var sections []Section
	current := Section{}
	var body strings.Builder

	flush := func() {
		current.Body = strings.TrimSpace(body.String())
		if current.Title != "" || current.Body != "" {
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "### "); ok {
			flush()
			current = Section{Title: strings.TrimSpace(title)}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}

// TranslationSections prefixes a translation with its own heading so the
// whole answer is shown even when the model uses no headings.
func TranslationSections(response string) []Section {
	return Sections("### Translation\n" + response)
}
