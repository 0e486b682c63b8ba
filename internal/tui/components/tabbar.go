package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "History", Key: 'h', KeyPos: 0},
	{Name: "Cycles", Key: 'c', KeyPos: 0},
	{Name: "Calendar", Key: 'a', KeyPos: 1},
}

func tabStyles(active bool) (name, key, bracket lipgloss.Style) {
	t := theme.Active
	base := lipgloss.NewStyle().Background(t.Surface).Padding(0, 1)
	if active {
		name = base.Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
		return name, name, name
	}
	name = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	bracket = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	return name, key, bracket
}

func renderTab(tab Tab, active bool) string {
	nameStyle, keyStyle, bracketStyle := tabStyles(active)
	if active {
		return nameStyle.Render(tab.Name)
	}
	pad := lipgloss.NewStyle().Background(theme.Active.Surface).Render(" ")
	before := tab.Name[:tab.KeyPos]
	key := string(tab.Name[tab.KeyPos])
	after := tab.Name[tab.KeyPos+1:]
	return pad + nameStyle.Render(before) +
		bracketStyle.Render("[") + keyStyle.Render(key) + bracketStyle.Render("]") +
		nameStyle.Render(after) + pad
}

// TabVisualWidth returns the rendered width of a tab, for mouse hitboxes.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}

	row := lipgloss.NewStyle().Background(t.Surface).Width(width)
	return row.Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
