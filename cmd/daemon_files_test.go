package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDaemonFilesClaimLoadRelease(t *testing.T) {
	f := daemonFiles{pidPath: filepath.Join(t.TempDir(), "run", "wburnd.pid")}
	want := daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      "127.0.0.1:9999",
		StartedAt: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		DBPath:    "/tmp/events.db",
	}
	if err := f.claim(want); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := f.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.PID != want.PID || got.Addr != want.Addr || got.DBPath != want.DBPath || !got.StartedAt.Equal(want.StartedAt) {
		t.Fatalf("load = %+v, want %+v", got, want)
	}

	if err := f.ensureFree(); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("ensureFree with a live pid = %v, want already running", err)
	}

	f.release()
	if _, err := os.Stat(f.pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file still present after release: %v", err)
	}
	if _, err := os.Stat(f.statePath()); !os.IsNotExist(err) {
		t.Fatalf("state file still present after release: %v", err)
	}
}

func TestDaemonFilesStalePID(t *testing.T) {
	f := daemonFiles{pidPath: filepath.Join(t.TempDir(), "wburnd.pid")}
	if err := f.claim(daemonRuntimeState{PID: 1 << 30}); err != nil {
		t.Fatal(err)
	}
	if err := f.ensureFree(); err != nil {
		t.Fatalf("ensureFree with a dead pid: %v", err)
	}
	if _, err := os.Stat(f.pidPath); !os.IsNotExist(err) {
		t.Fatal("stale pid file was not cleared")
	}
}

func TestDaemonFilesLoad(t *testing.T) {
	dir := t.TempDir()

	missing := daemonFiles{pidPath: filepath.Join(dir, "none.pid")}
	if _, err := missing.load(); !os.IsNotExist(err) {
		t.Fatalf("load of a missing pid file = %v, want not-exist", err)
	}
	if err := missing.ensureFree(); err != nil {
		t.Fatalf("ensureFree with no pid file: %v", err)
	}

	garbage := daemonFiles{pidPath: filepath.Join(dir, "bad.pid")}
	if err := os.WriteFile(garbage.pidPath, []byte("not-a-pid\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := garbage.load(); err == nil {
		t.Fatal("load accepted a malformed pid file")
	}

	// A pid file without its state file still loads.
	bare := daemonFiles{pidPath: filepath.Join(dir, "bare.pid")}
	if err := os.WriteFile(bare.pidPath, []byte("4242\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := bare.load()
	if err != nil || st.PID != 4242 || st.Addr != "" {
		t.Fatalf("load = %+v, %v", st, err)
	}
}

func TestWithoutDetach(t *testing.T) {
	got := withoutDetach([]string{"daemon", "--detach", "--addr", "127.0.0.1:1", "--detach=true"})
	want := []string{"daemon", "--addr", "127.0.0.1:1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("withoutDetach = %v, want %v", got, want)
	}
}
