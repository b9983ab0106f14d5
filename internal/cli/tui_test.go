package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flexpos/pkg/overlay"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

func press(m *PlayModel, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func repeat(k tea.KeyMsg, n int) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, n)
	for i := range keys {
		keys[i] = k
	}
	return keys
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPlayModelFlips(t *testing.T) {
	m, err := NewPlayModel(scenario.Sample())
	if err != nil {
		t.Fatalf("NewPlayModel() error = %v", err)
	}
	if !m.placed || m.last.PositionIndex != 0 {
		t.Fatalf("initial placement = %d (placed %v), want 0", m.last.PositionIndex, m.placed)
	}

	// 13 rows down puts the trigger at y=360, too low for the menu below.
	press(m, repeat(tea.KeyMsg{Type: tea.KeyDown}, 13)...)
	if m.host.Origin.Top != 360 {
		t.Fatalf("origin top = %v, want 360", m.host.Origin.Top)
	}
	if m.last.PositionIndex != 1 {
		t.Errorf("PositionIndex = %d, want 1 (above)", m.last.PositionIndex)
	}

	// The origin cannot leave the viewport.
	press(m, repeat(tea.KeyMsg{Type: tea.KeyDown}, 5)...)
	if m.host.Origin.Bottom > m.host.Viewport.Height {
		t.Errorf("origin bottom = %v, past viewport %v", m.host.Origin.Bottom, m.host.Viewport.Height)
	}
}

func TestPlayModelLockAndResize(t *testing.T) {
	m, err := NewPlayModel(scenario.Sample())
	if err != nil {
		t.Fatalf("NewPlayModel() error = %v", err)
	}
	press(m, repeat(tea.KeyMsg{Type: tea.KeyDown}, 13)...)
	press(m, runeKey('L'))
	if !m.pos.Config().PositionLocked {
		t.Fatal("L should lock the position")
	}

	press(m, repeat(tea.KeyMsg{Type: tea.KeyUp}, 13)...)
	if m.last.PositionIndex != 1 || m.last.Mode != overlay.ModeReapplied {
		t.Errorf("locked placement = %d %s, want 1 %s", m.last.PositionIndex, m.last.Mode, overlay.ModeReapplied)
	}

	// A terminal resize starts over, so the preferred position wins again.
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.host.Viewport.Width != 800 || m.host.Viewport.Height != 400 {
		t.Errorf("viewport = %vx%v, want 800x400", m.host.Viewport.Width, m.host.Viewport.Height)
	}
	if m.last.PositionIndex != 0 {
		t.Errorf("after resize PositionIndex = %d, want 0", m.last.PositionIndex)
	}
}

func TestPlayModelToggles(t *testing.T) {
	m, err := NewPlayModel(scenario.Sample())
	if err != nil {
		t.Fatalf("NewPlayModel() error = %v", err)
	}
	before := m.pos.Config()
	press(m, runeKey('p'), runeKey('f'), runeKey('g'), runeKey('r'))

	cfg := m.pos.Config()
	if cfg.Push == before.Push || cfg.FlexibleDimensions == before.FlexibleDimensions || cfg.GrowAfterOpen == before.GrowAfterOpen {
		t.Errorf("config after toggles = %+v, before %+v", cfg, before)
	}
	if !m.host.Viewport.RTL {
		t.Error("r should switch to right-to-left")
	}

	press(m, runeKey('+'))
	if m.host.Overlay.Width != 210 || m.last.Mode != overlay.ModeReapplied {
		t.Errorf("after +: overlay %v, mode %s", m.host.Overlay, m.last.Mode)
	}

	press(m, runeKey('x'))
	if m.placed {
		t.Error("hidden origin should not be placed")
	}
}

func TestPlayModelView(t *testing.T) {
	m, err := NewPlayModel(scenario.Sample())
	if err != nil {
		t.Fatalf("NewPlayModel() error = %v", err)
	}
	view := m.View()
	for _, want := range []string{"flexpos play", "dropdown", "[push]", "[lock]", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	if _, cmd := m.Update(runeKey('q')); cmd == nil {
		t.Error("q should quit")
	}
}
