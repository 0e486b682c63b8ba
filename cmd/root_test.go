package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/wburn/internal/config"
	"github.com/theirongolddev/wburn/internal/daemon"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/store"
	"github.com/theirongolddev/wburn/internal/tracker"
)

// isolate points config and data at temp dirs and restores the flags a
// test touches.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("WBURN_DB", "")

	asOf, remote, quiet, child := flagAsOf, flagRemote, flagQuiet, flagDaemonChild
	logDate, deleteYes, db := flagLogDate, flagDeleteYes, flagDB
	t.Cleanup(func() {
		flagAsOf, flagRemote, flagQuiet, flagDaemonChild = asOf, remote, quiet, child
		flagLogDate, flagDeleteYes, flagDB = logDate, deleteYes, db
	})
}

func TestNewClockReadsConfiguredZone(t *testing.T) {
	isolate(t)
	pacific := time.FixedZone("PST", -8*60*60)

	flagAsOf = ""
	clock, err := newClock(pacific)
	if err != nil {
		t.Fatal(err)
	}
	if got := clock.Now().Location(); got != pacific {
		t.Fatalf("clock location = %v, want %v", got, pacific)
	}

	flagAsOf = "2026-01-21"
	clock, err = newClock(pacific)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 1, 21, 12, 0, 0, 0, pacific)
	if got := clock.Now(); !got.Equal(want) || got.Location() != pacific {
		t.Fatalf("--as-of clock = %v, want %v", got, want)
	}
}

func TestOpenAppUsesConfiguredTimezone(t *testing.T) {
	isolate(t)
	if _, err := time.LoadLocation("America/Los_Angeles"); err != nil {
		t.Skipf("no tz database: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.General.Timezone = "America/Los_Angeles"
	if err := config.Save(cfg); err != nil {
		t.Fatal(err)
	}
	flagAsOf = ""
	flagDB = t.TempDir() + "/events.db"

	a, err := openApp()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	if got := a.tracker.Now().Location().String(); got != "America/Los_Angeles" {
		t.Fatalf("tracker now location = %s, want America/Los_Angeles", got)
	}
	if got, want := a.today(), model.CivilDate(time.Now().In(a.loc)); !got.Equal(want) {
		t.Fatalf("today = %v, want %v", got, want)
	}
}

func TestDaemonLoggerDetachedWritesJSON(t *testing.T) {
	isolate(t)
	flagDaemonChild = true

	var buf bytes.Buffer
	logger := daemonLogger("info", &buf)
	logger.Info().Str("addr", "127.0.0.1:8787").Msg("daemon listening")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("detached log has ANSI escapes: %q", buf.String())
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("detached log line is not JSON: %q: %v", buf.String(), err)
	}
	if line["message"] != "daemon listening" {
		t.Fatalf("log line = %v", line)
	}
}

func TestRemoteLogHistoryDelete(t *testing.T) {
	isolate(t)

	clock := &tracker.TestClock{CurrentTime: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	tr := tracker.New(store.NewMemory(), tracker.Options{Clock: clock, Logger: zerolog.Nop()})
	svc := daemon.New(tr, daemon.Config{Location: time.UTC}, zerolog.Nop())
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	flagRemote = srv.URL
	flagQuiet = true
	flagLogDate = "2026-01-09"
	if err := runLog(nil, []string{"solidcore", "2"}); err != nil {
		t.Fatalf("remote log: %v", err)
	}

	events, err := tr.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != model.Solidcore || events[0].Amount != 2 ||
		model.FormatDate(events[0].Date) != "2026-01-09" {
		t.Fatalf("daemon log after remote log = %+v", events)
	}

	if err := runHistory(nil, nil); err != nil {
		t.Fatalf("remote history: %v", err)
	}

	flagDeleteYes = true
	if err := runDelete(nil, []string{events[0].ID[:8]}); err != nil {
		t.Fatalf("remote delete: %v", err)
	}
	if events, _ := tr.List(context.Background()); len(events) != 0 {
		t.Fatalf("daemon log after remote delete = %+v", events)
	}

	if err := runDelete(nil, []string{"nope"}); err == nil {
		t.Fatal("remote delete of an unknown id succeeded")
	}
}
