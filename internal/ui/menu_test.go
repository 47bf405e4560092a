package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/state"
)

func TestRenderDistanceBar(t *testing.T) {
	tests := []struct {
		name       string
		pc         float64
		width      int
		wantFilled int
	}{
		{"nearby", 1.0, 9, 0},
		{"closer than 1pc", 0.5, 9, 0},
		{"ten parsecs", 10, 9, 3},
		{"hundred parsecs", 100, 9, 6},
		{"full", 1000, 9, 9},
		{"beyond scale", 5000, 9, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderDistanceBar(tt.pc, tt.width)

			if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
				t.Errorf("bar should have brackets, got %q", bar)
			}
			if got := strings.Count(bar, "█"); got != tt.wantFilled {
				t.Errorf("filled count = %d, want %d", got, tt.wantFilled)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
				t.Errorf("bar width = %d, want %d", got, tt.width)
			}
		})
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		pc   float64
		want string
	}{
		{1.301, "4.24 ly"},
		{195, "636 ly"},
	}
	for _, tt := range tests {
		if got := formatDistance(tt.pc); got != tt.want {
			t.Errorf("formatDistance(%v) = %q, want %q", tt.pc, got, tt.want)
		}
	}
}

func TestMenu_Navigation(t *testing.T) {
	m := NewMenuModel()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 at top", m.cursor)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if sel := m.Selected(); sel == nil || sel.ID != "gliese-667-cc" {
		t.Errorf("selected = %v, want gliese-667-cc", sel)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != len(planet.IDs())-1 {
		t.Errorf("cursor = %d, want last", m.cursor)
	}
}

func TestMenu_Select(t *testing.T) {
	m := NewMenuModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a command")
	}
	if msg, ok := cmd().(SelectPlanetMsg); !ok || msg.ID != "kepler-22b" {
		t.Errorf("msg = %#v, want SelectPlanetMsg{kepler-22b}", cmd())
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	if cmd == nil {
		t.Fatal("number key should select")
	}
	if msg := cmd().(SelectPlanetMsg); msg.ID != "trappist-1e" {
		t.Errorf("ID = %q, want trappist-1e", msg.ID)
	}
	if m.cursor != 3 {
		t.Errorf("cursor = %d, want 3", m.cursor)
	}

	if _, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}}); cmd != nil {
		t.Error("out of range number key should do nothing")
	}
}

func TestMenu_View(t *testing.T) {
	m := NewMenuModel().SetSize(100, 30)
	m = m.UpdateData(state.Snapshot{State: state.StateSelecting, LastError: errors.New("exoplanet data not found")})

	view := m.View()
	for _, want := range []string{"Choose a world", "Kepler-22b", "TRAPPIST-1e", "exoplanet data not found", "potentially habitable"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four five", 12)
	for _, line := range strings.Split(got, "\n") {
		if len(strings.TrimSpace(line)) > 12 {
			t.Errorf("line %q longer than 12", line)
		}
	}
	if strings.Join(strings.Fields(got), " ") != "one two three four five" {
		t.Errorf("wrap lost words: %q", got)
	}
}
