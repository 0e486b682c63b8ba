package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
)

var wrappedCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "Year-to-date recap with cycle history and calendar",
	RunE:  runWrapped,
}

func init() {
	rootCmd.AddCommand(wrappedCmd)
}

func runWrapped(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	r, err := a.tracker.Report(context.Background())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("WRAPPED  since " + a.tracker.YTDAnchor().Format("Jan 2, 2006")))
	fmt.Println()

	if r.YTD == nil {
		fmt.Println("  Nothing logged since the anchor date yet.")
		fmt.Println()
	} else {
		ytd := r.YTD
		maxVal := float64(max(ytd.ClassPass, ytd.Solidcore))
		fmt.Println(cli.RenderHorizontalBar(model.ClassPass.Label(), float64(ytd.ClassPass), maxVal, 10, 30))
		fmt.Println(cli.RenderHorizontalBar(model.Solidcore.Label(), float64(ytd.Solidcore), maxVal, 10, 30))
		fmt.Printf("\n  %s entries\n\n", cli.FormatNumber(int64(ytd.Events)))
	}

	if len(r.Cycles) > 0 {
		printCycleTable(r.Cycles)
		fmt.Println()
	}
	if len(r.Calendar) > 0 {
		fmt.Println(renderCalendarRow(r.Calendar))
	}
	return nil
}
