package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWrap = 80

// MarkdownRenderer draws titled markdown panels. Without color the markdown
// is kept as written and only framed.
type MarkdownRenderer struct {
	term *glamour.TermRenderer
	box  lipgloss.Style
}

func NewMarkdownRenderer(color bool, wrap int) (*MarkdownRenderer, error) {
	if wrap <= 0 {
		wrap = defaultWrap
	}

	m := &MarkdownRenderer{
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}

	if color {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		m.term = term
		m.box = m.box.BorderForeground(lipgloss.Color("2"))
	}
	return m, nil
}

// Panel renders one section with its heading inside a frame.
func (m *MarkdownRenderer) Panel(title, body string) (string, error) {
	text := strings.TrimSpace(body)
	if title != "" {
		text = "### " + title + "\n\n" + text
	}

	if m.term != nil {
		rendered, err := m.term.Render(text)
		if err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		text = strings.Trim(rendered, "\n")
	}

	return m.box.Render(text), nil
}
