package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/state"
)

// Styles for the planet menu
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("45"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("24"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// parsecToLightYears converts parsecs to light years.
const parsecToLightYears = 3.26156

// maxBarDistancePc is the distance that fills the distance bar.
const maxBarDistancePc = 1000.0

// MenuModel is the planet selection menu.
type MenuModel struct {
	width    int
	height   int
	cursor   int
	planets  []planet.Descriptor
	snapshot state.Snapshot
}

// NewMenuModel creates a menu over the planet registry.
func NewMenuModel() MenuModel {
	return MenuModel{planets: planet.All()}
}

// SetSize updates the viewport size.
func (m MenuModel) SetSize(width, height int) MenuModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with the latest machine snapshot.
func (m MenuModel) UpdateData(snapshot state.Snapshot) MenuModel {
	m.snapshot = snapshot
	return m
}

// Update handles key messages. Choosing a planet returns a command that
// emits SelectPlanetMsg.
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.planets)-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		if len(m.planets) > 0 {
			m.cursor = len(m.planets) - 1
		}
	case "enter", " ":
		return m, m.selectCmd()
	default:
		// Number keys jump straight to a planet.
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			idx := int(s[0] - '1')
			if idx < len(m.planets) {
				m.cursor = idx
				return m, m.selectCmd()
			}
		}
	}

	return m, nil
}

func (m MenuModel) selectCmd() tea.Cmd {
	sel := m.Selected()
	if sel == nil {
		return nil
	}
	id := sel.ID
	return func() tea.Msg {
		return SelectPlanetMsg{ID: id}
	}
}

// Selected returns the highlighted planet, if any.
func (m MenuModel) Selected() *planet.Descriptor {
	if m.cursor < 0 || m.cursor >= len(m.planets) {
		return nil
	}
	p := m.planets[m.cursor]
	return &p
}

// View renders the menu.
func (m MenuModel) View() string {
	var b strings.Builder

	if m.snapshot.LastError != nil {
		b.WriteString(errorStyle.Render("Error: " + m.snapshot.LastError.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Choose a world"))
	b.WriteString("\n")

	header := fmt.Sprintf("   %-2s %-20s %-18s %-10s %s", "", "Planet", "Host star", "Distance", "")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, p := range m.planets {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.AtmosphereColor.Hex())).Render("██")
		row := fmt.Sprintf("%d. %-20s %-18s %-10s %s",
			i+1,
			truncate(p.Name, 20),
			truncate(p.HostName, 18),
			formatDistance(p.Host.DistPc),
			renderDistanceBar(p.Host.DistPc, 12),
		)

		if i == m.cursor {
			b.WriteString(" " + swatch + " " + selectedRowStyle.Render(row))
		} else {
			b.WriteString(" " + swatch + " " + rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if sel := m.Selected(); sel != nil {
		b.WriteString("\n  ")
		b.WriteString(descStyle.Render(wrap(sel.Description, m.width-4)))
		b.WriteString("\n")
	}

	return b.String()
}

// formatDistance renders a distance in light years.
func formatDistance(pc float64) string {
	ly := pc * parsecToLightYears
	if ly < 10 {
		return fmt.Sprintf("%.2f ly", ly)
	}
	return fmt.Sprintf("%.0f ly", ly)
}

// renderDistanceBar draws distance on a log scale from 1 pc to
// maxBarDistancePc.
func renderDistanceBar(pc float64, width int) string {
	frac := 0.0
	if pc > 1 {
		frac = math.Log10(pc) / math.Log10(maxBarDistancePc)
	}
	filled := int(math.Round(frac * float64(width)))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("67"))
	return "[" + style.Render(bar) + "]"
}

// wrap breaks text on spaces so no line exceeds width.
func wrap(text string, width int) string {
	if width <= 10 {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n  ")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
