// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-exosky/internal/logging"
	"github.com/litescript/ls-exosky/internal/state"
	"github.com/litescript/ls-exosky/internal/version"
)

// frameInterval paces the star-field animation.
const frameInterval = 33 * time.Millisecond

// Msg types for Bubble Tea
type (
	// AnimTickMsg advances the star-field rotation and spinners.
	AnimTickMsg time.Time

	// stateEventMsg delivers an event scheduled by the state machine.
	stateEventMsg struct {
		ev state.Event
	}

	// SelectPlanetMsg requests the star map for a planet.
	SelectPlanetMsg struct {
		ID string
	}
)

// teaScheduler turns scheduled state events into Bubble Tea ticks. Commands
// accumulate during Update and are drained into the returned batch.
type teaScheduler struct {
	pending []tea.Cmd
}

// Schedule implements state.Scheduler.
func (s *teaScheduler) Schedule(delay time.Duration, ev state.Event) {
	s.pending = append(s.pending, tea.Tick(delay, func(time.Time) tea.Msg {
		return stateEventMsg{ev: ev}
	}))
}

func (s *teaScheduler) drain() []tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return cmds
}

// Options configures the root model.
type Options struct {
	State         state.Config
	RotationSpeed float64
	Logger        *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	machine *state.Machine
	sched   *teaScheduler
	speed   float64
	logger  *logging.Logger

	// UI state
	width    int
	height   int
	ready    bool
	animTick int

	// Sub-models
	menu    MenuModel
	starMap StarMapModel

	snapshot state.Snapshot
}

// New creates a new root UI model. The intro timer starts with Init.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	sched := &teaScheduler{}
	machine := state.NewMachine(opts.State, sched, logger.With("state"))

	return Model{
		machine:  machine,
		sched:    sched,
		speed:    opts.RotationSpeed,
		logger:   logger.With("ui"),
		menu:     NewMenuModel(),
		starMap:  NewStarMapModel(),
		snapshot: machine.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.machine.Start()
	cmds := append(m.sched.drain(), animTickCmd())
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		default:
			cmds = append(cmds, m.handleKey(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo and tagline take ~9 lines, footer ~2
		contentHeight := msg.Height - 11
		m.menu = m.menu.SetSize(msg.Width, contentHeight)
		m.starMap = m.starMap.SetSize(msg.Width, msg.Height-2)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		m.machine.Tick(m.speed)
		m.starMap = m.starMap.SetAnimTick(m.animTick)

	case stateEventMsg:
		m.machine.Dispatch(msg.ev)

	case SelectPlanetMsg:
		if err := m.machine.SelectPlanet(msg.ID); err != nil {
			m.logger.Warn("select %s: %v", msg.ID, err)
		}

	default:
		if m.snapshot.State == state.StateRendering {
			var cmd tea.Cmd
			m.starMap, cmd = m.starMap.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.syncSnapshot()
	cmds = append(cmds, m.sched.drain()...)
	return m, tea.Batch(cmds...)
}

// handleKey routes a key to the active view.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.machine.Snapshot()
	if snap.Fading {
		return nil
	}

	var cmd tea.Cmd
	switch snap.State {
	case state.StateIntro:
		switch msg.String() {
		case "enter", " ", "esc":
			m.machine.IntroElapsed()
		}
	case state.StateSelecting:
		m.menu, cmd = m.menu.Update(msg)
	case state.StateRendering:
		switch msg.String() {
		case "esc", "b", "backspace":
			if err := m.machine.Back(); err != nil {
				m.logger.Debug("back: %v", err)
			}
		default:
			m.starMap, cmd = m.starMap.Update(msg)
		}
	}
	return cmd
}

// syncSnapshot refreshes sub-models after the machine may have changed.
func (m *Model) syncSnapshot() {
	prev := m.snapshot
	m.snapshot = m.machine.Snapshot()

	m.menu = m.menu.UpdateData(m.snapshot)
	if m.snapshot.Scene != prev.Scene {
		m.starMap = m.starMap.SetScene(m.snapshot.Scene)
	}
	m.starMap = m.starMap.UpdateData(m.snapshot)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.snapshot.State {
	case state.StateIntro:
		content = m.renderIntro()
	case state.StateSelecting:
		content = m.renderLogo() + m.menu.View()
	case state.StateRendering:
		content = m.starMap.View()
	}

	if m.snapshot.Fading {
		content = fadeStyle.Render(content)
	}

	return content + "\n" + m.renderFooter()
}

var fadeStyle = lipgloss.NewStyle().Faint(true)

var logo = []string{
	`  ███████╗██╗  ██╗ ██████╗ ███████╗██╗  ██╗██╗   ██╗`,
	`  ██╔════╝╚██╗██╔╝██╔═══██╗██╔════╝██║ ██╔╝╚██╗ ██╔╝`,
	`  █████╗   ╚███╔╝ ██║   ██║███████╗█████╔╝  ╚████╔╝`,
	`  ██╔══╝   ██╔██╗ ██║   ██║╚════██║██╔═██╗   ╚██╔╝`,
	`  ███████╗██╔╝ ██╗╚██████╔╝███████║██║  ██╗   ██║`,
	`  ╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═╝   ╚═╝`,
}

func (m Model) renderLogo() string {
	var b strings.Builder
	b.WriteString("\n")

	// Render each line with a horizontal truecolor gradient
	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Exoplanet Skies · v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

func (m Model) renderIntro() string {
	var b strings.Builder

	// Center the logo vertically
	pad := (m.height - len(logo) - 6) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}
	b.WriteString(m.renderLogo())
	b.WriteString("  ")
	b.WriteString(m.renderShimmerText("What does the night sky look like from another world?"))
	b.WriteString("\n\n")

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(dim.Render("  press enter to begin"))
	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// deep blue through teal to pale gold, darker toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.5 {
		// Blue (#1E3A8A) to Teal (#14B8A6)
		t := xRatio / 0.5
		r = 30 + t*(20-30)
		g = 58 + t*(184-58)
		b = 138 + t*(166-138)
	} else {
		// Teal to Gold (#FDE68A)
		t := (xRatio - 0.5) / 0.5
		r = 20 + t*(253-20)
		g = 184 + t*(230-184)
		b = 166 + t*(138-166)
	}

	brightness := 1.0 - yRatio*0.4
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.Fading:
		status = dimStyle.Render("...")
	default:
		status = dimStyle.Render(m.snapshot.State.String())
	}

	var help string
	switch m.snapshot.State {
	case state.StateIntro:
		help = "enter: skip intro | q: quit"
	case state.StateSelecting:
		help = "↑↓: choose | enter: explore | 1-4: jump | q: quit"
	case state.StateRendering:
		help = "arrows: pan | s: find Sol | h: home | l: labels | i: info | esc: back | q: quit"
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := (m.animTick / 2) % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 200, 230, 240
		case dist <= 3:
			r8, g8, b8 = 150, 190, 210
		case dist <= 5:
			r8, g8, b8 = 110, 150, 180
		default:
			r8, g8, b8 = 80, 110, 150
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

func animTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// Snapshot returns the machine state last seen by the model.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}
