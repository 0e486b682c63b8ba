package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/daemon"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/tui"
)

var (
	flagLogDate        string
	flagLogInteractive bool
)

var logCmd = &cobra.Command{
	Use:   "log [classpass|solidcore] [amount]",
	Short: "Record credits or classes used",
	Example: `  wburn log classpass 4
  wburn log solidcore 1 --date 2026-01-05
  wburn log -i
  wburn log classpass 2 --remote 127.0.0.1:8787`,
	Args: cobra.MaximumNArgs(2),
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&flagLogDate, "date", "", "Day of the class (YYYY-MM-DD, default today)")
	logCmd.Flags().BoolVarP(&flagLogInteractive, "interactive", "i", false, "Fill in the entry with a form")
	rootCmd.AddCommand(logCmd)
}

func runLog(_ *cobra.Command, args []string) error {
	if c := remoteClient(); c != nil {
		return runLogRemote(c, args)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	vals, ok, err := logValues(args, a.today())
	if err != nil || !ok {
		return err
	}
	typ, amount, date, err := vals.Parse(a.loc)
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := a.tracker.Create(ctx, typ, amount, date)
	if err != nil {
		return err
	}

	printLogged(e)
	return printRemaining(ctx, a, e.Type)
}

func runLogRemote(c *daemon.Client, args []string) error {
	loc, today, err := remoteCalendar()
	if err != nil {
		return err
	}
	vals, ok, err := logValues(args, today)
	if err != nil || !ok {
		return err
	}
	typ, amount, date, err := vals.Parse(loc)
	if err != nil {
		return err
	}

	ctx, cancel := remoteContext()
	defer cancel()

	e, err := c.CreateEvent(ctx, typ, amount, date)
	if err != nil {
		return err
	}
	printLogged(e)
	if flagQuiet {
		return nil
	}
	b, err := c.Balance(ctx)
	if err != nil {
		return err
	}
	printBalanceLine(b, e.Type)
	return nil
}

// logValues gathers the entry from args or the form. ok is false when the
// user backed out of the form.
func logValues(args []string, today time.Time) (tui.EventFormValues, bool, error) {
	switch {
	case flagLogInteractive || len(args) == 0:
		vals := tui.NewEventFormValues(nil, today)
		if len(args) > 0 {
			vals.Type = args[0]
		}
		if err := tui.NewEventForm("Log usage", &vals).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return vals, false, nil
			}
			return vals, false, err
		}
		return vals, true, nil
	case len(args) == 2:
		vals := tui.EventFormValues{Type: args[0], Amount: args[1], Date: flagLogDate}
		if vals.Date == "" {
			vals.Date = model.FormatDate(today)
		}
		return vals, true, nil
	default:
		return tui.EventFormValues{}, false, errors.New("expected an activity type and an amount, or -i for the form")
	}
}

func printLogged(e model.UsageEvent) {
	fmt.Printf("  Logged %d %s %s on %s  (id %s)\n",
		e.Amount, e.Type.Label(), e.Type.Unit(), cli.FormatDate(e.Date), cli.FormatShortID(e.ID))
}

func printRemaining(ctx context.Context, a *app, typ model.EventType) error {
	if flagQuiet {
		return nil
	}
	b, err := a.tracker.Balance(ctx)
	if err != nil {
		return err
	}
	printBalanceLine(b, typ)
	return nil
}

func printBalanceLine(b model.Balance, typ model.EventType) {
	remaining, limit := b.ClassPassRemaining, b.ClassPassLimit
	if typ == model.Solidcore {
		remaining, limit = b.SolidcoreRemaining, b.SolidcoreLimit
	}
	fmt.Printf("  %s left this cycle: %s\n", typ.Label(), cli.RenderRemaining(remaining, limit))
}
