package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fluidc/pkg/pipeline"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// TrialModel - Interactive trial browser
// =============================================================================

// TrialModel is the bubbletea model for browsing ranked trials. The upper
// pane lists the trials, the lower pane shows the communities of the trial
// under the cursor.
type TrialModel struct {
	Trials []pipeline.Trial
	Cursor int
	Height int
	Offset int
}

func newTrialModel(out *pipeline.TrialsResult) TrialModel {
	return TrialModel{Trials: out.Trials, Height: 10}
}

func (m TrialModel) Init() tea.Cmd {
	return nil
}

func (m TrialModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Trials)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		// Half the screen for the list, the rest for the community pane.
		m.Height = max(3, msg.Height/2-6)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m TrialModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Trials"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g top  q quit"))
	b.WriteString("\n\n")

	if len(m.Trials) == 0 {
		b.WriteString(listDimStyle.Render("no trials"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Trials))
	b.WriteString(trialsTable(m.Trials[m.Offset:end], m.Offset, m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Trials))))
	b.WriteString("\n\n")

	t := m.Trials[m.Cursor]
	b.WriteString(fmt.Sprintf("%s %s  %s\n",
		StyleTitle.Render("Seed"),
		StyleValue.Render(fmt.Sprint(t.Seed)),
		stopLabel(t.Partition)))
	b.WriteString(communityTable(t.Partition, 12))
	b.WriteString("\n")
	return b.String()
}
