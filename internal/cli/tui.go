package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ibtopo/pkg/fabric"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SwitchListModel - Interactive switch selection
// =============================================================================

// SwitchListModel is the bubbletea model for picking the switches to draw.
type SwitchListModel struct {
	Switches []*fabric.Node
	Cursor   int
	Height   int
	Offset   int

	// Chosen holds the toggled LIDs.
	Chosen map[int]bool

	// Confirmed is set when the user accepted the selection with enter.
	Confirmed bool
}

// NewSwitchListModel creates a picker over the switches of t, ordered by LID.
func NewSwitchListModel(t *fabric.Topology) SwitchListModel {
	var switches []*fabric.Node
	for _, n := range t.Nodes() {
		if n.IsSwitch {
			switches = append(switches, n)
		}
	}
	return SwitchListModel{
		Switches: switches,
		Height:   15,
		Chosen:   make(map[int]bool),
	}
}

func (m SwitchListModel) Init() tea.Cmd {
	return nil
}

func (m SwitchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Switches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Switches) > 0 {
				lid := m.Switches[m.Cursor].LID
				if m.Chosen[lid] {
					delete(m.Chosen, lid)
				} else {
					m.Chosen[lid] = true
				}
			}
		case "a":
			if len(m.Chosen) == len(m.Switches) {
				clear(m.Chosen)
			} else {
				for _, sw := range m.Switches {
					m.Chosen[sw.LID] = true
				}
			}
		case "enter":
			if len(m.Chosen) == 0 && len(m.Switches) > 0 {
				m.Chosen[m.Switches[m.Cursor].LID] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// Selected returns the chosen LIDs in LID order, or nil if the picker was
// aborted.
func (m SwitchListModel) Selected() []int {
	if !m.Confirmed {
		return nil
	}
	var lids []int
	for _, sw := range m.Switches {
		if m.Chosen[sw.LID] {
			lids = append(lids, sw.LID)
		}
	}
	return lids
}

func (m SwitchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Switches"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ render  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Switches))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		sw := m.Switches[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Chosen[sw.LID] {
			mark = "[x]"
		}
		rows = append(rows, []string{
			cursor + mark,
			strconv.Itoa(sw.LID),
			sw.Name,
			fmt.Sprintf("%d/%d", sw.UsedPorts(), sw.TotalPorts),
			strconv.Itoa(sw.FreePorts()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "LID", "Switch", "Used", "Free").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Switches) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Chosen[m.Switches[idx].LID] {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			if col == 4 {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d selected", m.Cursor+1, len(m.Switches), len(m.Chosen))))

	return b.String()
}

// pickSwitches runs the picker and returns the chosen LIDs; nil means the
// user quit without choosing.
func pickSwitches(t *fabric.Topology) ([]int, error) {
	m := NewSwitchListModel(t)
	if len(m.Switches) == 0 {
		return nil, nil
	}

	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	fm, ok := finalModel.(SwitchListModel)
	if !ok {
		return nil, nil
	}
	return fm.Selected(), nil
}
