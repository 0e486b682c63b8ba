package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/wburn/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("x past the last tab -> %d, want -1", got)
		}
	}
}

func TestMouseClickSelectsTab(t *testing.T) {
	a, _ := newLoadedApp(t)

	x := components.TabVisualWidth(components.Tabs[0], true) + 1 + 2
	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabHistory {
		t.Fatalf("activeTab = %d, want History", got)
	}
}

func TestMouseWheelMovesHistoryCursor(t *testing.T) {
	a, _ := newLoadedApp(t)
	a.activeTab = tabHistory

	m, _ := a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	a = m.(App)
	if a.hist.cursor != 1 {
		t.Fatalf("cursor = %d after wheel down, want 1", a.hist.cursor)
	}
	m, _ = a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m, _ = m.(App).Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if got := m.(App).hist.cursor; got != 0 {
		t.Fatalf("cursor = %d, want clamped at 0", got)
	}
}
