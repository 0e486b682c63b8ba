package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath := cfg.DBPath()
	if flagDB != "" {
		dbPath = flagDB
	}
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "local"
	}

	fmt.Println("  [General]")
	fmt.Printf("    Database:  %s\n", dbPath)
	fmt.Printf("    Timezone:  %s\n", tz)
	fmt.Printf("    Log level: %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Limits]")
	fmt.Printf("    ClassPass credits: %d per cycle (rollover capped at %d)\n", cfg.Limits.ClassPass, cfg.Limits.ClassPass)
	fmt.Printf("    Solidcore classes: %d per cycle\n", cfg.Limits.Solidcore)
	fmt.Printf("    Reset day:         %d\n", cfg.Limits.ResetDay)
	fmt.Printf("    Year-to-date from: %s\n", cfg.Limits.YTDAnchor)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval: %s\n", cfg.PollInterval())
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  Run `wburn setup` to reconfigure.")
	return nil
}
