package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/pipeline"
)

var (
	flagHistoryType   string
	flagHistoryLimit  int
	flagHistorySearch string
	flagHistoryCycle  bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "List logged entries, newest first",
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistoryType, "type", "t", "", "Only show one activity type")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 0, "Show at most this many entries")
	historyCmd.Flags().StringVarP(&flagHistorySearch, "search", "s", "", "Filter by id, type or date substring")
	historyCmd.Flags().BoolVar(&flagHistoryCycle, "cycle", false, "Only the current cycle")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	var typ model.EventType
	if flagHistoryType != "" {
		t, err := model.ParseEventType(flagHistoryType)
		if err != nil {
			return err
		}
		typ = t
	}

	var (
		events  []model.UsageEvent
		balance func(context.Context) (model.Balance, error)
		err     error
	)
	ctx := context.Background()
	if c := remoteClient(); c != nil {
		var cancel context.CancelFunc
		ctx, cancel = remoteContext()
		defer cancel()
		events, err = c.Events(ctx, typ)
		balance = c.Balance
	} else {
		a, openErr := openApp()
		if openErr != nil {
			return openErr
		}
		defer func() { _ = a.Close() }()
		events, err = a.tracker.List(ctx)
		balance = a.tracker.Balance
	}
	if err != nil {
		return err
	}
	if len(events) == 0 && typ == "" {
		fmt.Println("\n  Nothing logged yet. Try `wburn log classpass 4`.")
		return nil
	}

	if typ != "" {
		events = pipeline.FilterByType(events, typ)
	}
	if flagHistorySearch != "" {
		events = pipeline.FilterByText(events, flagHistorySearch)
	}
	title := "HISTORY"
	if flagHistoryCycle {
		b, err := balance(ctx)
		if err != nil {
			return err
		}
		events = pipeline.FilterByTime(events, b.CycleStart, b.CycleEnd)
		title += "  " + cli.FormatCycle(b.CycleStart, b.CycleEnd)
	}
	if flagHistoryLimit > 0 && flagHistoryLimit < len(events) {
		events = events[:flagHistoryLimit]
	}

	if len(events) == 0 {
		fmt.Println("\n  No entries match.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			model.FormatDate(e.Date),
			cli.FormatDayOfWeek(int(e.Date.Weekday())),
			e.Type.Label(),
			strconv.Itoa(e.Amount),
			cli.FormatShortID(e.ID),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Activity", "Amount", "ID"},
		Rows:    rows,
	}))
	return nil
}
