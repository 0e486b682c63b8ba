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
	flagExportFormat string
	flagExportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the event log as JSON, JSONL or YAML",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "json", "Output format: json, jsonl, yaml")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := source.ParseFormat(flagExportFormat)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	events, err := a.tracker.List(context.Background())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if flagExportOutput != "" && flagExportOutput != "-" {
		f, err := os.OpenFile(flagExportOutput, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := source.Write(w, format, events); err != nil {
		return err
	}
	if w != os.Stdout {
		infof("  Exported %d entries to %s\n", len(events), flagExportOutput)
	}
	return nil
}
