// Package cmd implements the wburn CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/config"
	"github.com/theirongolddev/wburn/internal/logging"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/store"
	"github.com/theirongolddev/wburn/internal/tracker"
)

var (
	flagDB       string
	flagLogLevel string
	flagQuiet    bool
	flagAsOf     string
)

var rootCmd = &cobra.Command{
	Use:           "wburn",
	Short:         "Fitness credit tracker",
	Long:          "Track ClassPass credits and Solidcore classes across monthly billing cycles, with rollover.",
	RunE:          runStatus,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Event database path (default from config or $WBURN_DB)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Pretend today is this date (YYYY-MM-DD)")
}

// app bundles everything a command needs to talk to the event log.
type app struct {
	cfg     config.Config
	loc     *time.Location
	log     zerolog.Logger
	store   store.EventStore
	tracker *tracker.Service
}

// openApp is the shared setup path used by all data commands.
func openApp() (*app, error) {
	return openAppWithLogger(logging.New)
}

// openAppWithLogger is openApp with a caller-chosen logger constructor.
func openAppWithLogger(newLogger func(level string, w io.Writer) zerolog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.General.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger := newLogger(level, os.Stderr)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock, err := newClock(loc)
	if err != nil {
		return nil, err
	}

	path := cfg.DBPath()
	if flagDB != "" {
		path = flagDB
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("db", path).Msg("opened event log")

	tr := tracker.New(st, tracker.Options{
		Limits:    cfg.ModelLimits(),
		YTDAnchor: cfg.YTDAnchor(),
		Clock:     clock,
		Location:  loc,
		Logger:    logger,
	})
	return &app{cfg: cfg, loc: loc, log: logger, store: st, tracker: tr}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newClock honors --as-of by pinning now to noon of that day.
func newClock(loc *time.Location) (tracker.Clock, error) {
	if flagAsOf == "" {
		return tracker.RealClock{Location: loc}, nil
	}
	d, err := model.ParseDate(flagAsOf, loc)
	if err != nil {
		return nil, fmt.Errorf("--as-of: %w", err)
	}
	return &tracker.TestClock{
		CurrentTime: time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc),
	}, nil
}

// today returns the civil date for default --date values.
func (a *app) today() time.Time {
	return model.CivilDate(a.tracker.Now())
}

func infof(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
