// Package tui provides the interactive Bubble Tea dashboard for wburn.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/pipeline"
	"github.com/theirongolddev/wburn/internal/tracker"
	"github.com/theirongolddev/wburn/internal/tui/components"
	"github.com/theirongolddev/wburn/internal/tui/theme"
)

// ReportMsg carries a freshly computed report.
type ReportMsg struct {
	Report   tracker.Report
	LoadTime time.Duration
	Err      error
}

// MutationMsg reports the outcome of a create, update or delete.
type MutationMsg struct {
	Status string
	Err    error
}

type tickMsg struct{}

const (
	tabOverview = iota
	tabHistory
	tabCycles
	tabCalendar
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	refreshInterval  = 30 * time.Second
	requestTimeout   = 10 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	svc *tracker.Service
	loc *time.Location

	// Data
	report      tracker.Report
	loaded      bool
	loadErr     error
	loadTime    time.Duration
	lastRefresh time.Time
	refreshing  bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	hist historyState

	// New/edit form (huh)
	form     *huh.Form
	formVals *EventFormValues
	formID   string // empty when logging a new entry

	message    string
	messageErr bool

	spinner spinner.Model
}

type historyState struct {
	cursor int

	filtering   bool
	filterInput textinput.Model
	query       string

	confirmID string // pending delete
}

// NewApp creates the root model around a tracker service.
func NewApp(svc *tracker.Service, loc *time.Location) App {
	if loc == nil {
		loc = time.Local
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	ti := textinput.New()
	ti.Placeholder = "filter by date, activity or id"
	ti.CharLimit = 64
	ti.Prompt = "/ "

	return App{
		svc:     svc,
		loc:     loc,
		spinner: sp,
		hist:    historyState{filterInput: ti},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		loadReportCmd(a.svc),
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width-8, 60))
		}
		return a, nil

	case ReportMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.loadErr = msg.Err
			if a.loaded {
				a.setMessage("refresh failed: "+msg.Err.Error(), true)
			}
			return a, nil
		}
		a.report = msg.Report
		a.loaded = true
		a.loadErr = nil
		a.loadTime = msg.LoadTime
		a.clampHistoryCursor()
		return a, nil

	case MutationMsg:
		if msg.Err != nil {
			a.setMessage(msg.Err.Error(), true)
			return a, nil
		}
		a.setMessage(msg.Status, false)
		a.refreshing = true
		return a, loadReportCmd(a.svc)

	case tickMsg:
		if a.loaded && !a.refreshing && time.Since(a.lastRefresh) >= refreshInterval {
			a.refreshing = true
			return a, tea.Batch(loadReportCmd(a.svc), tickCmd())
		}
		return a, tickCmd()

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.form != nil {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabHistory && !a.hist.filtering {
			a.moveCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabHistory && !a.hist.filtering {
			a.moveCursor(1)
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y <= 1 {
			if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	// The form owns the keyboard while open.
	if a.form != nil {
		if key == "esc" {
			a.closeForm()
			a.setMessage("cancelled", false)
			return a, nil
		}
		return a.updateForm(msg)
	}

	if a.activeTab == tabHistory && a.hist.filtering {
		return a.updateHistoryFilter(msg)
	}

	if a.hist.confirmID != "" {
		id := a.hist.confirmID
		a.hist.confirmID = ""
		if key == "y" || key == "Y" {
			return a, deleteEventCmd(a.svc, id)
		}
		a.setMessage("delete cancelled", false)
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, loadReportCmd(a.svc)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "n":
		return a.openForm(nil)
	}

	if a.activeTab == tabHistory {
		if m, cmd, ok := a.updateHistoryKey(key); ok {
			return m, cmd
		}
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// updateHistoryKey handles History-only bindings. ok is false when the key
// is not one of them.
func (a App) updateHistoryKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g", "home":
		a.hist.cursor = 0
	case "G", "end":
		a.hist.cursor = max(len(a.historyEvents())-1, 0)
	case "/":
		a.hist.filtering = true
		a.hist.filterInput.SetValue(a.hist.query)
		a.hist.filterInput.CursorEnd()
		return a, a.hist.filterInput.Focus(), true
	case "esc":
		if a.hist.query == "" {
			return a, nil, false
		}
		a.hist.query = ""
		a.hist.cursor = 0
	case "e", "enter":
		e, ok := a.selectedEvent()
		if !ok {
			return a, nil, true
		}
		m, cmd := a.openForm(&e)
		return m, cmd, true
	case "d", "x":
		e, ok := a.selectedEvent()
		if !ok {
			return a, nil, true
		}
		a.hist.confirmID = e.ID
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateHistoryFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.hist.query = strings.TrimSpace(a.hist.filterInput.Value())
		a.hist.filtering = false
		a.hist.filterInput.Blur()
		a.hist.cursor = 0
		return a, nil
	case "esc":
		a.hist.filtering = false
		a.hist.filterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.hist.filterInput, cmd = a.hist.filterInput.Update(msg)
	return a, cmd
}

func (a App) openForm(e *model.UsageEvent) (tea.Model, tea.Cmd) {
	vals := NewEventFormValues(e, model.CivilDate(a.report.Now))
	a.formVals = &vals
	title := "Log activity"
	a.formID = ""
	if e != nil {
		title = "Edit " + cli.FormatShortID(e.ID)
		a.formID = e.ID
	}
	a.form = NewEventForm(title, a.formVals).WithShowHelp(true)
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width-8, 60))
	}
	return a, a.form.Init()
}

func (a *App) closeForm() {
	a.form = nil
	a.formVals = nil
	a.formID = ""
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		vals, id := *a.formVals, a.formID
		a.closeForm()
		return a, saveEventCmd(a.svc, id, vals, a.loc)
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) setMessage(msg string, isErr bool) {
	a.message = msg
	a.messageErr = isErr
}

func (a *App) moveCursor(delta int) {
	n := len(a.historyEvents())
	if n == 0 {
		return
	}
	a.hist.cursor = min(max(a.hist.cursor+delta, 0), n-1)
}

func (a *App) clampHistoryCursor() {
	n := len(a.historyEvents())
	if a.hist.cursor >= n {
		a.hist.cursor = max(n-1, 0)
	}
}

// historyEvents is the report's log, newest first, narrowed by the filter.
func (a App) historyEvents() []model.UsageEvent {
	if a.hist.query == "" {
		return a.report.Events
	}
	return pipeline.FilterByText(a.report.Events, a.hist.query)
}

func (a App) selectedEvent() (model.UsageEvent, bool) {
	events := a.historyEvents()
	if a.hist.cursor < 0 || a.hist.cursor >= len(events) {
		return model.UsageEvent{}, false
	}
	return events[a.hist.cursor], true
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	h := max(a.height, 5)
	msg := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Background).
		Render(fmt.Sprintf("Terminal too narrow (%d cols, need %d)", a.width, minTerminalWidth))
	return lipgloss.Place(a.width, h, lipgloss.Center, lipgloss.Center, msg,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ wburn"))
	b.WriteString(subtitleStyle.Render(" · Fitness Credits"))
	b.WriteString("\n\n")
	if a.loadErr != nil {
		b.WriteString(errStyle.Render("Could not load the log: " + a.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("press q to quit"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Reading the log..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("esc to cancel")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(a.form.View()+"\n"+hint),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o h c a", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through history"},
			{"g G", "First / Last entry"},
		}},
		{"Actions", [][2]string{
			{"n", "Log activity"},
			{"e", "Edit selected entry"},
			{"d", "Delete selected entry"},
			{"/", "Filter history"},
			{"Esc", "Clear filter / Cancel"},
			{"r", "Refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	// Header: tab bar + cycle pill
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	bal := a.report.Balance
	pill := pillStyle.Render(" cycle ") +
		accentStyle.Render(cli.FormatCycle(bal.CycleStart, bal.CycleEnd)) +
		pillStyle.Render(" │ today ") +
		accentStyle.Render(cli.FormatDate(model.CivilDate(a.report.Now)))
	if a.hist.query != "" {
		pill += pillStyle.Render(" │ filter ") + accentStyle.Render(a.hist.query)
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(pill)

	statusBar := components.RenderStatusBar(w, a.statusHints(), a.message, a.dataAge(), a.messageErr)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabCycles:
		content = a.renderCyclesTab(cw)
	case tabCalendar:
		content = a.renderCalendarTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.PlaceHorizontal(w, lipgloss.Center, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return header + "\n" + content + "\n" + statusBar
}

func (a App) statusHints() string {
	switch {
	case a.hist.confirmID != "":
		return "delete " + cli.FormatShortID(a.hist.confirmID) + "? y/n"
	case a.activeTab == tabHistory:
		return "[n]ew [e]dit [d]elete [/]filter [?]help [q]uit"
	default:
		return "[n]ew [r]efresh [?]help [q]uit"
	}
}

func (a App) dataAge() string {
	if a.refreshing {
		return "refreshing…"
	}
	if a.lastRefresh.IsZero() {
		return ""
	}
	return fmt.Sprintf("loaded in %dms", a.loadTime.Milliseconds())
}

// tabAtX maps a click column in the tab bar to a tab index, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		// Must match RenderTabBar's widths exactly.
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func loadReportCmd(svc *tracker.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		start := time.Now()
		r, err := svc.Report(ctx)
		return ReportMsg{Report: r, LoadTime: time.Since(start), Err: err}
	}
}

func saveEventCmd(svc *tracker.Service, id string, vals EventFormValues, loc *time.Location) tea.Cmd {
	return func() tea.Msg {
		typ, amount, date, err := vals.Parse(loc)
		if err != nil {
			return MutationMsg{Err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if id == "" {
			e, err := svc.Create(ctx, typ, amount, date)
			if err != nil {
				return MutationMsg{Err: err}
			}
			return MutationMsg{Status: fmt.Sprintf("logged %d %s on %s", e.Amount, e.Type.Unit(), model.FormatDate(e.Date))}
		}

		e, err := svc.Update(ctx, id, amount, typ, date)
		if err != nil {
			return MutationMsg{Err: err}
		}
		return MutationMsg{Status: "updated " + cli.FormatShortID(e.ID)}
	}
}

func deleteEventCmd(svc *tracker.Service, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := svc.Delete(ctx, id); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = errors.New("delete timed out")
			}
			return MutationMsg{Err: err}
		}
		return MutationMsg{Status: "deleted " + cli.FormatShortID(id)}
	}
}

// truncateHeight limits a string to at most limit lines.
func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

// padHeight pads a string with newlines to reach exactly h lines.
func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
