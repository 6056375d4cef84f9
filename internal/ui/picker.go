package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrPickerAborted is returned when the user quits the sequence picker
// without choosing anything.
var ErrPickerAborted = errors.New("selection aborted")

// SequenceItem is one selectable row in the sequence picker.
type SequenceItem struct {
	Name    string // sequence name, e.g. "1.2"
	Summary string // e.g. "2 steps: bootloader 1.2, app 1.2"
}

type pickerModel struct {
	items   []SequenceItem
	cursor  int
	chosen  int // index of the selection, -1 while undecided
	aborted bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderTitleStyle.Render("Select a firmware sequence"))
	b.WriteString("\n\n")

	for i, item := range m.items {
		marker := "  "
		nameStyle := lipgloss.NewStyle().Foreground(TextColor)
		if i == m.cursor {
			marker = lipgloss.NewStyle().Foreground(PrimaryColor).Render("> ")
			nameStyle = nameStyle.Foreground(PrimaryColor).Bold(true)
		}
		b.WriteString(fmt.Sprintf("  %s%s  %s\n",
			marker,
			nameStyle.Render(item.Name),
			HeaderParamValueStyle.Foreground(MutedColor).Render(item.Summary),
		))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(MutedColor).
		Render("  ↑/↓ move · enter select · q quit"))
	b.WriteString("\n")

	return b.String()
}

// PickSequence runs the interactive picker and returns the chosen
// sequence name. Returns ErrPickerAborted if the user quits.
func PickSequence(items []SequenceItem) (string, error) {
	if len(items) == 0 {
		return "", errors.New("no sequences to choose from")
	}

	model := pickerModel{items: items, chosen: -1}
	program := tea.NewProgram(model)

	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("sequence picker failed: %w", err)
	}

	result := final.(pickerModel)
	if result.aborted || result.chosen < 0 {
		return "", ErrPickerAborted
	}
	return result.items[result.chosen].Name, nil
}
