package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/config"
	"github.com/theirongolddev/wburn/internal/daemon"
	"github.com/theirongolddev/wburn/internal/logging"
)

const daemonStopTimeout = 8 * time.Second

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve balances and the event log over HTTP/SSE",
	Long: `Run a long-lived process that recomputes balances on an interval and serves
them, along with the event log, over a local HTTP API. Other wburn commands
can talk to it with --remote.`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is running and its latest balances",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaults := config.DefaultConfig().Daemon
	dataDir := config.DataDir()

	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", defaults.Addr, "HTTP listen address")
	pf.DurationVar(&flagDaemonInterval, "interval", time.Duration(defaults.IntervalSeconds)*time.Second, "How often to recompute balances")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(dataDir, "wburnd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(dataDir, "wburnd.log"), "Log file for --detach")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", defaults.EventsBuffer, "Stream events kept in memory")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run in the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: set on the detached child")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonPIDFiles() daemonFiles {
	return daemonFiles{pidPath: flagDaemonPIDFile}
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("invalid daemon launch mode")
	case flagDaemonDetach:
		return startDaemonDetached()
	default:
		return runDaemonForeground(cmd)
	}
}

// startDaemonDetached re-executes wburn with --child, its output going to the
// log file.
func startDaemonDetached() error {
	if err := daemonPIDFiles().ensureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, append(withoutDetach(os.Args[1:]), "--child")...) //nolint:gosec // re-runs this binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API:  http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log:  %s\n", flagDaemonLogFile)
	fmt.Printf("  PID:  %s\n", flagDaemonPIDFile)
	return nil
}

func runDaemonForeground(cmd *cobra.Command) error {
	files := daemonPIDFiles()
	if err := files.ensureFree(); err != nil {
		return err
	}

	a, err := openAppWithLogger(daemonLogger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cfg := daemonConfigFor(cmd, a)
	if err := files.claim(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      cfg.Addr,
		StartedAt: time.Now(),
		DBPath:    cfg.DBPath,
	}); err != nil {
		return err
	}
	defer files.release()

	svc := daemon.New(a.tracker, cfg, a.log)

	fmt.Printf("  wburn daemon listening on http://%s\n", cfg.Addr)
	fmt.Printf("  Recomputing every %s from %s\n", cfg.Interval, cfg.DBPath)
	fmt.Printf("  Stop with: wburn daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// daemonConfigFor merges the [daemon] config section with any flags given
// on the command line.
func daemonConfigFor(cmd *cobra.Command, a *app) daemon.Config {
	cfg := daemon.Config{
		Addr:         a.cfg.Daemon.Addr,
		Interval:     a.cfg.PollInterval(),
		EventsBuffer: a.cfg.Daemon.EventsBuffer,
		DBPath:       a.cfg.DBPath(),
		Location:     a.loc,
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = flagDaemonAddr
	}
	if flags.Changed("interval") {
		cfg.Interval = flagDaemonInterval
	}
	if flags.Changed("events-buffer") {
		cfg.EventsBuffer = flagDaemonEventsBuffer
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	return cfg
}

// daemonLogger writes JSON lines when detached or redirected, and the
// console format on a terminal.
func daemonLogger(level string, w io.Writer) zerolog.Logger {
	if flagDaemonChild {
		return logging.NewJSON(level, w)
	}
	return logging.Auto(level, w)
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	st, err := daemonPIDFiles().load()
	if err != nil {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if !processAlive(st.PID) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", st.PID)
		return nil
	}
	if st.Addr == "" {
		st.Addr = flagDaemonAddr
	}

	fmt.Printf("  Daemon PID: %d\n", st.PID)
	fmt.Printf("  Address:    http://%s\n", st.Addr)
	if !st.StartedAt.IsZero() {
		fmt.Printf("  Up since:   %s\n", st.StartedAt.Local().Format(time.RFC3339))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := daemon.NewClient(st.Addr).Status(ctx)
	if err != nil {
		fmt.Printf("  API:        %v\n", err)
		return nil
	}

	if status.LastPollAt.IsZero() {
		fmt.Println("  Last poll:  pending")
	} else {
		fmt.Printf("  Last poll:  %s (%d so far)\n", status.LastPollAt.Local().Format(time.RFC3339), status.PollCount)
	}
	if status.DBPath != "" {
		fmt.Printf("  Database:   %s\n", status.DBPath)
	}
	sum := status.Summary
	fmt.Printf("  Cycle:      %s\n", cli.FormatCycle(sum.CycleStart, sum.CycleEnd))
	fmt.Printf("  ClassPass:  %s\n", cli.RenderRemaining(sum.ClassPassRemaining, sum.ClassPassLimit))
	fmt.Printf("  Solidcore:  %s\n", cli.RenderRemaining(sum.SolidcoreRemaining, sum.SolidcoreLimit))
	fmt.Printf("  Listeners:  %d\n", status.SubscriberCount)
	if status.LastError != "" {
		fmt.Printf("  Last error: %s\n", status.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	files := daemonPIDFiles()
	st, err := files.load()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	if !waitForExit(st.PID, daemonStopTimeout) {
		return fmt.Errorf("daemon (pid %d) did not exit in time", st.PID)
	}
	files.release()
	fmt.Printf("  Stopped daemon (pid %d)\n", st.PID)
	return nil
}

func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		time.Sleep(150 * time.Millisecond)
	}
	return false
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
