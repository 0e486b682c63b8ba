package cmd

import (
	"context"
	"time"

	"github.com/theirongolddev/wburn/internal/config"
	"github.com/theirongolddev/wburn/internal/daemon"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/tracker"
)

const remoteTimeout = 5 * time.Second

var flagRemote string

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRemote, "remote", "", "Send log, delete and history to a running daemon at this address")
}

// remoteClient returns a daemon client when --remote is set, or nil.
func remoteClient() *daemon.Client {
	return daemon.NewClient(flagRemote)
}

func remoteContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), remoteTimeout)
}

// remoteCalendar reads the configured zone and today's civil date without
// opening the local event log, which the daemon owns.
func remoteCalendar() (*time.Location, time.Time, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, time.Time{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, time.Time{}, err
	}
	clock, err := newClock(loc)
	if err != nil {
		return nil, time.Time{}, err
	}
	return loc, model.CivilDate(clock.Now().In(loc)), nil
}

// resolveRemote expands an id prefix against the daemon's event list.
func resolveRemote(ctx context.Context, c *daemon.Client, prefix string) (model.UsageEvent, error) {
	events, err := c.Events(ctx, "")
	if err != nil {
		return model.UsageEvent{}, err
	}
	return tracker.MatchID(events, prefix)
}
