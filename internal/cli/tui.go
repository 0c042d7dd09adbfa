package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/ports"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// PortPickerModel - Interactive port selection
// =============================================================================

// PortPickerModel is the bubbletea model for choosing one port of one item.
// It drives an open [ports.Selector]: enter calls Select, quitting calls
// Close. Occupied ports are listed but cannot be chosen.
type PortPickerModel struct {
	Selector *ports.Selector
	Ports    []ports.Port
	Cursor   int
	Err      error // last rejected choice
	Done     bool  // a port was selected
}

// NewPortPickerModel creates a picker over sel, which must be open.
// The cursor starts on the first free port.
func NewPortPickerModel(sel *ports.Selector) PortPickerModel {
	m := PortPickerModel{Selector: sel, Ports: sel.Ports()}
	for i, p := range m.Ports {
		if p.Available {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m PortPickerModel) Init() tea.Cmd {
	return nil
}

func (m PortPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Selector.Close()
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
			m.Err = nil
		case "down", "j":
			if m.Cursor < len(m.Ports)-1 {
				m.Cursor++
			}
			m.Err = nil
		case "enter":
			if len(m.Ports) == 0 {
				return m, nil
			}
			if err := m.Selector.Select(m.Ports[m.Cursor].Name); err != nil {
				m.Err = err
				return m, nil
			}
			m.Done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PortPickerModel) View() string {
	var b strings.Builder

	item := m.Selector.Item()
	side := "female (outlet)"
	if m.Selector.PortType() == inventory.Male {
		side = "male (plug)"
	}
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Select %s port on %s", side, item.DisplayName())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Ports) == 0 {
		b.WriteString(listDimStyle.Render("  no ports of this type"))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, len(m.Ports))
	for i, p := range m.Ports {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := "free"
		if !p.Available {
			status = "in use"
			if p.ConnectedTo != nil {
				status += " → " + p.ConnectedTo.String()
			}
		}
		rows[i] = []string{cursor, p.Name, status}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Port", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if row >= len(m.Ports) {
				return lipgloss.NewStyle()
			}
			p := m.Ports[row]
			base := lipgloss.NewStyle()
			if row == m.Cursor {
				base = base.Bold(true)
			}
			if p.Available {
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(listErrorStyle.Render("  " + iconError + " " + pkgerrors.UserMessage(m.Err)))
		b.WriteString("\n")
	}

	free := 0
	for _, p := range m.Ports {
		if p.Available {
			free++
		}
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d free", m.Cursor+1, len(m.Ports), free)))

	return b.String()
}
