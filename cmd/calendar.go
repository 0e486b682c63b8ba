package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/model"
)

var flagCalendarMonths int

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Month grids with the days you trained highlighted",
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().IntVarP(&flagCalendarMonths, "months", "m", 3, "How many months to show (0 for all)")
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	months, err := a.tracker.CalendarMarks(context.Background())
	if err != nil {
		return err
	}
	if len(months) == 0 {
		fmt.Println("\n  Nothing logged yet.")
		return nil
	}
	if flagCalendarMonths > 0 && flagCalendarMonths < len(months) {
		months = months[:flagCalendarMonths]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CALENDAR"))
	fmt.Println()
	fmt.Println(renderCalendarRow(months))
	return nil
}

// renderCalendarRow lays month grids side by side, three per row.
func renderCalendarRow(months []model.CalendarMonth) string {
	const perRow = 3
	var rows []string
	for i := 0; i < len(months); i += perRow {
		end := min(i+perRow, len(months))
		grids := make([]string, 0, perRow)
		for _, m := range months[i:end] {
			grid := cli.RenderCalendar(m.Year, m.Month, m.Active)
			grids = append(grids, lipgloss.NewStyle().PaddingLeft(2).PaddingRight(2).Render(grid))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, grids...))
	}
	return strings.Join(rows, "\n\n") + "\n"
}
