package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the boxed banner printed at the start of deploy and verify
// runs, showing the command and its resolved parameters.
type Header struct {
	Title   string            // e.g., "FIRMWARE DEPLOYMENT"
	Command string            // e.g., "hawkroll deploy 1.0"
	Params  map[string]string // e.g., {"Server": "https://...", "Targets": "12 devices"}
	Width   int               // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	commandLine := HeaderCommandStyle.Render(h.Command)

	sections := []string{titleLine, commandLine}

	if len(h.Params) > 0 {
		dividerWidth := width - 6
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", dividerWidth))
		sections = append(sections, HeaderParamKeyStyle.Render(divider))

		keys := make([]string, 0, len(h.Params))
		for k := range h.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			line := HeaderParamKeyStyle.Render(k+": ") + HeaderParamValueStyle.Render(h.Params[k])
			sections = append(sections, line)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return HeaderBorderStyle(width).Render(content)
}
