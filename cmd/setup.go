package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/wburn/internal/config"
	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the wizard's string-typed answers.
type setupValues struct {
	classPass string
	solidcore string
	resetDay  string
	timezone  string
	ytdAnchor string
	theme     string
}

func positiveInt(limit int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > limit {
			return fmt.Errorf("enter a whole number between 1 and %d", limit)
		}
		return nil
	}
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	vals := setupValues{
		classPass: strconv.Itoa(cfg.Limits.ClassPass),
		solidcore: strconv.Itoa(cfg.Limits.Solidcore),
		resetDay:  strconv.Itoa(cfg.Limits.ResetDay),
		timezone:  cfg.General.Timezone,
		ytdAnchor: cfg.Limits.YTDAnchor,
		theme:     cfg.Appearance.Theme,
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to wburn").
				Description("Set your monthly allowances. Unused ClassPass credits roll over, up to one month's worth."),
			huh.NewInput().Title("ClassPass credits per cycle").Value(&vals.classPass).Validate(positiveInt(1000)),
			huh.NewInput().Title("Solidcore classes per cycle").Value(&vals.solidcore).Validate(positiveInt(1000)),
			huh.NewInput().Title("Billing reset day").Description("Day of month the cycle starts (1-28)").
				Value(&vals.resetDay).Validate(positiveInt(28)),
		),
		huh.NewGroup(
			huh.NewInput().Title("Timezone").Description("IANA name, blank for local time").
				Value(&vals.timezone).Validate(func(s string) error {
				if s == "" {
					return nil
				}
				_, err := time.LoadLocation(s)
				return err
			}),
			huh.NewInput().Title("Year-to-date starts").Description("YYYY-MM-DD").
				Value(&vals.ytdAnchor).Validate(func(s string) error {
				_, err := time.Parse(model.DateLayout, s)
				return err
			}),
			huh.NewSelect[string]().Title("Color theme").Options(themes...).Value(&vals.theme),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	// Inputs were validated by the form.
	cfg.Limits.ClassPass, _ = strconv.Atoi(vals.classPass)
	cfg.Limits.Solidcore, _ = strconv.Atoi(vals.solidcore)
	cfg.Limits.ResetDay, _ = strconv.Atoi(vals.resetDay)
	cfg.Limits.YTDAnchor = vals.ytdAnchor
	cfg.General.Timezone = vals.timezone
	cfg.Appearance.Theme = vals.theme

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `wburn setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
