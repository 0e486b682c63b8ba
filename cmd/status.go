package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show remaining credits and classes for the current cycle",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	b, err := a.tracker.Balance(ctx)
	if err != nil {
		return err
	}
	now := a.tracker.Now()

	fmt.Println()
	fmt.Println(cli.RenderTitle("WBURN  " + cli.FormatCycle(b.CycleStart, b.CycleEnd)))
	fmt.Println()

	rows := [][]string{
		{model.ClassPass.Label(), cli.RenderRemaining(b.ClassPassRemaining, b.ClassPassLimit), fmt.Sprintf("%d used", b.ClassPassUsed)},
		{"  rollover", cli.FormatSigned(b.Bonus), ""},
		{"---"},
		{model.Solidcore.Label(), cli.RenderRemaining(b.SolidcoreRemaining, b.SolidcoreLimit), fmt.Sprintf("%d used", b.SolidcoreUsed)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Activity", "Left", "Used"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Printf("  Cycle  %s\n", cli.RenderProgressBar(b.ProgressPercent, 30))
	fmt.Printf("  Resets in %s (%s)\n\n", cli.FormatDays(b.DaysLeft(now)), cli.FormatDate(b.CycleEnd))

	if b.ClassPassRemaining < 0 {
		fmt.Printf("  Over the %s allowance by %d %s.\n\n",
			model.ClassPass.Label(), -b.ClassPassRemaining, model.ClassPass.Unit())
	}
	if b.SolidcoreRemaining < 0 {
		fmt.Printf("  Over the %s allowance by %d %s.\n\n",
			model.Solidcore.Label(), -b.SolidcoreRemaining, model.Solidcore.Unit())
	}
	return nil
}
