package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/cli"
	"github.com/theirongolddev/wburn/internal/daemon"
	"github.com/theirongolddev/wburn/internal/model"
)

var flagDeleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a logged entry",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	if c := remoteClient(); c != nil {
		return runDeleteRemote(c, args[0])
	}

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
	e, err := a.tracker.Get(ctx, id)
	if err != nil {
		return err
	}
	if !confirmDelete(e) {
		return nil
	}

	if err := a.tracker.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s (%s)\n", cli.FormatShortID(id), describeEvent(e))
	return printRemaining(ctx, a, e.Type)
}

func runDeleteRemote(c *daemon.Client, prefix string) error {
	ctx, cancel := remoteContext()
	defer cancel()

	e, err := resolveRemote(ctx, c, prefix)
	if err != nil {
		return err
	}
	if !confirmDelete(e) {
		return nil
	}
	if err := c.DeleteEvent(ctx, e.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s (%s)\n", cli.FormatShortID(e.ID), describeEvent(e))
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

func describeEvent(e model.UsageEvent) string {
	return fmt.Sprintf("%d %s %s on %s", e.Amount, e.Type.Label(), e.Type.Unit(), cli.FormatDate(e.Date))
}

// confirmDelete asks before deleting unless --yes was given.
func confirmDelete(e model.UsageEvent) bool {
	if flagDeleteYes {
		return true
	}
	confirm := false
	err := huh.NewConfirm().
		Title("Delete " + describeEvent(e) + "?").
		Affirmative("Delete").
		Negative("Keep").
		Value(&confirm).
		Run()
	if err != nil || !confirm {
		fmt.Println("  Nothing deleted.")
		return false
	}
	return true
}
