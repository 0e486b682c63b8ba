package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonRuntimeState is written next to the pid file while the daemon runs.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

// daemonFiles is the pid file plus the JSON state file beside it.
type daemonFiles struct {
	pidPath string
}

func (f daemonFiles) statePath() string { return f.pidPath + ".json" }

// claim records st as the running daemon.
func (f daemonFiles) claim(st daemonRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(f.pidPath, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// The state file only adds detail for `daemon status`.
	_ = os.WriteFile(f.statePath(), append(data, '\n'), 0o600)
	return nil
}

// release removes both files.
func (f daemonFiles) release() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.statePath())
}

// load reads the recorded daemon. A missing or unreadable state file leaves
// everything but PID zero.
func (f daemonFiles) load() (daemonRuntimeState, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(f.pidPath)
	if err != nil {
		return daemonRuntimeState{}, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return daemonRuntimeState{}, fmt.Errorf("invalid pid in %s", f.pidPath)
	}

	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	if raw, err := os.ReadFile(f.statePath()); err == nil {
		_ = json.Unmarshal(raw, &st)
	}
	st.PID = pid
	return st, nil
}

// ensureFree fails when a live daemon holds the pid file and clears stale
// files left by one that died.
func (f daemonFiles) ensureFree() error {
	st, err := f.load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case processAlive(st.PID):
		return fmt.Errorf("daemon already running (pid %d)", st.PID)
	}
	f.release()
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
