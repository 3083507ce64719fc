package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// StepListModel - Interactive final step selection
// =============================================================================

// StepListModel is the bubbletea model for interactive step selection.
type StepListModel struct {
	Steps    []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewStepListModel creates a step list model over the given steps.
func NewStepListModel(steps []string) StepListModel {
	return StepListModel{
		Steps:  steps,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m StepListModel) Init() tea.Cmd {
	return nil
}

func (m StepListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Steps)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Steps[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m StepListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Final Step"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Steps) {
		end = len(m.Steps)
	}

	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + m.Steps[i]
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// pickStep runs the interactive picker and returns the chosen step.
// An empty string means the user quit without selecting.
func pickStep(steps []string) (string, error) {
	p := tea.NewProgram(NewStepListModel(steps))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := finalModel.(StepListModel)
	if !ok {
		return "", nil
	}
	return m.Selected, nil
}
