package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/source"
)

var (
	flagImportFormat string
	flagImportDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Load entries from an export or a browser workoutHistory dump",
	Long: `Load entries from a wburn export (json, jsonl, yaml) or from the JSON array
saved by the original web app. Entries whose id is already stored are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&flagImportFormat, "format", "f", "", "Input format (default: detect)")
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and report without saving")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	path := args[0]

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // import path is chosen by the local user
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	format := source.DetectFormat(path, data)
	if flagImportFormat != "" {
		if format, err = source.ParseFormat(flagImportFormat); err != nil {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	parsed, err := source.Parse(data, format, a.loc)
	if err != nil {
		return err
	}
	a.log.Debug().Str("format", string(format)).Int("records", len(parsed.Events)).
		Int("parse_errors", parsed.ParseErrors).Msg("parsed import")

	if flagImportDryRun {
		fmt.Printf("  Would import up to %d entries (%d unreadable records)\n",
			len(parsed.Events), parsed.ParseErrors)
		return nil
	}

	res, err := a.tracker.Import(context.Background(), parsed.Events)
	if err != nil {
		return err
	}

	fmt.Printf("  Imported %d entries", res.Imported)
	if res.Skipped > 0 {
		fmt.Printf(", %d already present", res.Skipped)
	}
	if bad := res.Invalid + parsed.ParseErrors; bad > 0 {
		fmt.Printf(", %d invalid", bad)
	}
	fmt.Println()
	return nil
}
