package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/store"
	"github.com/theirongolddev/wburn/internal/tracker"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

// newLoadedApp returns an app on 2026-01-10 with three entries already loaded:
// solidcore 1 on Jan 8, classpass 3 on Jan 5 and classpass 2 on Dec 28.
func newLoadedApp(t *testing.T) (App, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(
		model.UsageEvent{ID: "aaaa1111", Date: day(t, "2026-01-05"), Type: model.ClassPass, Amount: 3},
		model.UsageEvent{ID: "bbbb2222", Date: day(t, "2025-12-28"), Type: model.ClassPass, Amount: 2},
		model.UsageEvent{ID: "cccc3333", Date: day(t, "2026-01-08"), Type: model.Solidcore, Amount: 1},
	)
	clock := &tracker.TestClock{CurrentTime: day(t, "2026-01-10").Add(12 * time.Hour)}
	svc := tracker.New(mem, tracker.Options{Clock: clock, Logger: zerolog.Nop()})

	a := NewApp(svc, time.UTC)
	m, _ := a.Update(loadReportCmd(svc)())
	m, _ = m.(App).Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	a = m.(App)
	if !a.loaded {
		t.Fatalf("app not loaded: %v", a.loadErr)
	}
	return a, mem
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var m tea.Model
		m, cmd = a.Update(msg)
		a = m.(App)
	}
	return a, cmd
}

func plain(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestTabKeys(t *testing.T) {
	a, _ := newLoadedApp(t)

	tests := []struct {
		key  string
		want int
	}{
		{"h", tabHistory},
		{"c", tabCycles},
		{"a", tabCalendar},
		{"right", tabOverview},
		{"left", tabCalendar},
		{"o", tabOverview},
	}
	for _, tt := range tests {
		a, _ = press(t, a, tt.key)
		if a.activeTab != tt.want {
			t.Fatalf("after %q activeTab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	a, _ := newLoadedApp(t)

	a, _ = press(t, a, "?")
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(plain(a.View()), "Keyboard Shortcuts") {
		t.Fatal("help view missing title")
	}
	a, _ = press(t, a, "c")
	if a.showHelp || a.activeTab != tabOverview {
		t.Fatalf("any key should only close help: showHelp=%v tab=%d", a.showHelp, a.activeTab)
	}
}

func TestHistoryOrderAndCursor(t *testing.T) {
	a, _ := newLoadedApp(t)
	a, _ = press(t, a, "h")

	events := a.historyEvents()
	var ids []string
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	if got := strings.Join(ids, ","); got != "cccc3333,aaaa1111,bbbb2222" {
		t.Fatalf("history order = %s", got)
	}

	a, _ = press(t, a, "j", "j", "j", "j")
	if a.hist.cursor != 2 {
		t.Fatalf("cursor = %d, want clamped at 2", a.hist.cursor)
	}
	a, _ = press(t, a, "g")
	if a.hist.cursor != 0 {
		t.Fatalf("cursor = %d after g, want 0", a.hist.cursor)
	}
	a, _ = press(t, a, "G")
	if e, _ := a.selectedEvent(); e.ID != "bbbb2222" {
		t.Fatalf("selected %s after G, want the oldest entry", e.ID)
	}
}

func TestHistoryFilter(t *testing.T) {
	a, _ := newLoadedApp(t)
	a, _ = press(t, a, "h", "/")
	if !a.hist.filtering {
		t.Fatal("/ should start filtering")
	}

	a, _ = press(t, a, "solid", "enter")
	if a.hist.filtering {
		t.Fatal("enter should leave filter mode")
	}
	if a.hist.query != "solid" {
		t.Fatalf("query = %q", a.hist.query)
	}
	if got := a.historyEvents(); len(got) != 1 || got[0].ID != "cccc3333" {
		t.Fatalf("filtered = %+v", got)
	}
	if !strings.Contains(plain(a.View()), "History [1]") {
		t.Fatal("history title should count filtered entries")
	}

	a, _ = press(t, a, "esc")
	if a.hist.query != "" || len(a.historyEvents()) != 3 {
		t.Fatalf("esc should clear the filter, query=%q", a.hist.query)
	}
}

func TestFilterKeysDoNotSwitchTabs(t *testing.T) {
	a, _ := newLoadedApp(t)
	a, _ = press(t, a, "h", "/", "c", "a")
	if a.activeTab != tabHistory {
		t.Fatalf("typing in the filter switched to tab %d", a.activeTab)
	}
	if got := a.hist.filterInput.Value(); got != "ca" {
		t.Fatalf("filter input = %q, want %q", got, "ca")
	}
	a, _ = press(t, a, "esc")
	if a.hist.filtering || a.hist.query != "" {
		t.Fatal("esc in filter mode should discard the input")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	a, mem := newLoadedApp(t)
	ctx := context.Background()

	a, _ = press(t, a, "h", "d")
	if a.hist.confirmID != "cccc3333" {
		t.Fatalf("confirmID = %q", a.hist.confirmID)
	}
	a, cmd := press(t, a, "n")
	if cmd != nil || a.hist.confirmID != "" {
		t.Fatal("n should cancel the delete")
	}
	if events, _ := mem.List(ctx); len(events) != 3 {
		t.Fatalf("store has %d events after cancel, want 3", len(events))
	}

	a, _ = press(t, a, "d")
	a, cmd = press(t, a, "y")
	if cmd == nil {
		t.Fatal("y should issue a delete")
	}
	msg, ok := cmd().(MutationMsg)
	if !ok || msg.Err != nil {
		t.Fatalf("delete result = %+v", msg)
	}
	m, reload := a.Update(msg)
	a = m.(App)
	if reload == nil {
		t.Fatal("a successful mutation should reload the report")
	}
	m, _ = a.Update(reload())
	a = m.(App)

	if got := len(a.historyEvents()); got != 2 {
		t.Fatalf("history has %d entries after delete, want 2", got)
	}
	if !strings.Contains(a.message, "deleted cccc3333") {
		t.Fatalf("message = %q", a.message)
	}
}

func TestNewEntryFormOpensAndCancels(t *testing.T) {
	a, _ := newLoadedApp(t)

	a, _ = press(t, a, "n")
	if a.form == nil || a.formVals == nil {
		t.Fatal("n should open the form")
	}
	if a.formID != "" {
		t.Fatalf("formID = %q for a new entry", a.formID)
	}
	if a.formVals.Date != "2026-01-10" {
		t.Fatalf("form date = %q, want today", a.formVals.Date)
	}

	a, _ = press(t, a, "esc")
	if a.form != nil {
		t.Fatal("esc should close the form")
	}
}

func TestEditFormPrefills(t *testing.T) {
	a, _ := newLoadedApp(t)
	a, _ = press(t, a, "h", "j", "e")
	if a.form == nil {
		t.Fatal("e should open the form")
	}
	if a.formID != "aaaa1111" {
		t.Fatalf("formID = %q", a.formID)
	}
	want := EventFormValues{Type: "classpass", Amount: "3", Date: "2026-01-05"}
	if *a.formVals != want {
		t.Fatalf("form values = %+v, want %+v", *a.formVals, want)
	}
}

func TestSaveEventCmd(t *testing.T) {
	a, mem := newLoadedApp(t)
	ctx := context.Background()

	msg := saveEventCmd(a.svc, "", EventFormValues{Type: "solidcore", Amount: "2", Date: "2026-01-09"}, time.UTC)().(MutationMsg)
	if msg.Err != nil {
		t.Fatalf("create: %v", msg.Err)
	}
	if !strings.Contains(msg.Status, "logged 2") {
		t.Fatalf("status = %q", msg.Status)
	}

	msg = saveEventCmd(a.svc, "aaaa1111", EventFormValues{Type: "classpass", Amount: "7", Date: "2026-01-05"}, time.UTC)().(MutationMsg)
	if msg.Err != nil {
		t.Fatalf("update: %v", msg.Err)
	}
	got, err := mem.Get(ctx, "aaaa1111")
	if err != nil || got.Amount != 7 {
		t.Fatalf("updated event = %+v, %v", got, err)
	}

	msg = saveEventCmd(a.svc, "", EventFormValues{Type: "classpass", Amount: "0", Date: "2026-01-09"}, time.UTC)().(MutationMsg)
	if !errors.Is(msg.Err, model.ErrInvalidAmount) {
		t.Fatalf("err = %v, want invalid amount", msg.Err)
	}

	msg = saveEventCmd(a.svc, "missing", EventFormValues{Type: "classpass", Amount: "1", Date: "2026-01-09"}, time.UTC)().(MutationMsg)
	if !errors.Is(msg.Err, store.ErrNotFound) {
		t.Fatalf("err = %v, want not found", msg.Err)
	}
}

func TestMutationErrorShowsMessage(t *testing.T) {
	a, _ := newLoadedApp(t)
	m, cmd := a.Update(MutationMsg{Err: model.ErrInvalidDate})
	a = m.(App)
	if cmd != nil {
		t.Fatal("failed mutations should not reload")
	}
	if !a.messageErr || a.message != "invalid date" {
		t.Fatalf("message = %q err=%v", a.message, a.messageErr)
	}
}

func TestViewsRender(t *testing.T) {
	a, _ := newLoadedApp(t)

	tests := []struct {
		key  string
		want []string
	}{
		{"o", []string{"ClassPass left", "21 / 26", "Solidcore left", "4 / 5", "Recent"}},
		{"h", []string{"History [3]", "aaaa1111"}},
		{"c", []string{"Totals", "Rollover", "now"}},
		{"a", []string{"January 2026", "December 2025"}},
	}
	for _, width := range []int{100, 160} {
		m, _ := a.Update(tea.WindowSizeMsg{Width: width, Height: 45})
		a = m.(App)
		for _, tt := range tests {
			a, _ = press(t, a, tt.key)
			out := plain(a.View())
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("width %d tab %q: missing %q", width, tt.key, w)
				}
			}
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a, _ := newLoadedApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := plain(m.(App).View()); !strings.Contains(out, "too narrow") {
		t.Fatalf("narrow view = %q", out)
	}
}

func TestLoadErrorShownBeforeFirstReport(t *testing.T) {
	a := NewApp(nil, time.UTC)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.(App).Update(ReportMsg{Err: errors.New("disk on fire")})
	out := plain(m.(App).View())
	if !strings.Contains(out, "disk on fire") {
		t.Fatalf("loading view should surface the error:\n%s", out)
	}
}
