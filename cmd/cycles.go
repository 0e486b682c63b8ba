package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
)

var flagCyclesLedger bool

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Per-cycle usage totals",
	RunE:  runCycles,
}

func init() {
	cyclesCmd.Flags().BoolVar(&flagCyclesLedger, "ledger", false, "Show how the ClassPass rollover was carried cycle to cycle")
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if flagCyclesLedger {
		return printLedger(context.Background(), a)
	}

	cycles, err := a.tracker.CycleSummaries(context.Background())
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Println("\n  Nothing logged yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CYCLES"))
	fmt.Println()
	printCycleTable(cycles)

	// Oldest left so the sparkline reads forward in time.
	spark := make([]float64, len(cycles))
	for i, c := range cycles {
		spark[len(cycles)-1-i] = float64(c.ClassPass)
	}
	fmt.Printf("\n  %s trend  %s\n\n", model.ClassPass.Label(), cli.RenderSparkline(spark))
	return nil
}

func printCycleTable(cycles []model.CycleSummary) {
	rows := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		rows = append(rows, []string{
			cli.FormatCycle(c.Start, c.End),
			strconv.Itoa(c.ClassPass),
			strconv.Itoa(c.Solidcore),
			strconv.Itoa(c.Events),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Cycle", model.ClassPass.Label(), model.Solidcore.Label(), "Entries"},
		Rows:    rows,
	}))
}

func printLedger(ctx context.Context, a *app) error {
	rows, err := a.tracker.Ledger(ctx)
	if err != nil {
		return err
	}
	b, err := a.tracker.Balance(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CLASSPASS ROLLOVER"))
	fmt.Println()

	table := make([][]string, 0, len(rows)+2)
	for _, r := range rows {
		table = append(table, []string{
			cli.FormatCycle(r.Start, r.End),
			strconv.Itoa(r.BonusIn),
			strconv.Itoa(r.Limit),
			strconv.Itoa(r.Used),
			cli.FormatSigned(r.Leftover),
			strconv.Itoa(r.CarryOut),
		})
	}
	if len(table) > 0 {
		table = append(table, []string{"---"})
	}
	table = append(table, []string{
		cli.FormatCycle(b.CycleStart, b.CycleEnd) + " (now)",
		strconv.Itoa(b.Bonus),
		strconv.Itoa(b.ClassPassLimit),
		strconv.Itoa(b.ClassPassUsed),
		cli.FormatSigned(b.ClassPassRemaining),
		"",
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Cycle", "Bonus In", "Limit", "Used", "Leftover", "Carry"},
		Rows:    table,
	}))
	fmt.Printf("\n  Carry is capped at %d and never negative.\n\n", a.tracker.Limits().ClassPass)
	return nil
}
