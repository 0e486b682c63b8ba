package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/tui"
)

var (
	flagEditType        string
	flagEditAmount      int
	flagEditDate        string
	flagEditInteractive bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the type, amount or date of a logged entry",
	Long:  "Change a logged entry. The id may be any unique prefix shown by `wburn history`.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&flagEditType, "type", "", "New activity type")
	editCmd.Flags().IntVar(&flagEditAmount, "amount", 0, "New amount")
	editCmd.Flags().StringVar(&flagEditDate, "date", "", "New date (YYYY-MM-DD)")
	editCmd.Flags().BoolVarP(&flagEditInteractive, "interactive", "i", false, "Edit with a form")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	id, err := a.tracker.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	old, err := a.tracker.Get(ctx, id)
	if err != nil {
		return err
	}

	vals := tui.NewEventFormValues(&old, a.today())
	flags := cmd.Flags()
	if flags.Changed("type") {
		vals.Type = flagEditType
	}
	if flags.Changed("amount") {
		vals.Amount = strconv.Itoa(flagEditAmount)
	}
	if flags.Changed("date") {
		vals.Date = flagEditDate
	}

	changed := flags.Changed("type") || flags.Changed("amount") || flags.Changed("date")
	if flagEditInteractive || !changed {
		if err := tui.NewEventForm("Edit "+cli.FormatShortID(id), &vals).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	typ, amount, date, err := vals.Parse(a.loc)
	if err != nil {
		return err
	}
	e, err := a.tracker.Update(ctx, id, amount, typ, date)
	if err != nil {
		return err
	}

	fmt.Printf("  Updated %s: %d %s %s on %s\n",
		cli.FormatShortID(e.ID), e.Amount, e.Type.Label(), e.Type.Unit(), cli.FormatDate(e.Date))
	return printRemaining(ctx, a, e.Type)
}
