package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an atelier configuration file without starting the app.

This command parses the YAML, expands environment variables, applies
defaults and flag overrides, and validates all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  atelier validate -c atelier.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:     %s\n", cfg.Title)
	fmt.Fprintf(out, "  Listen:    %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(out, "  Database:  %s\n", cfg.DatabasePath())
	fmt.Fprintf(out, "  Window:    %dx%d (%s)\n", cfg.Window.Width, cfg.Window.Height, policyOf(cfg))
	fmt.Fprintf(out, "  Reminders: %s, %s ahead\n", cfg.Reminders.Schedule, cfg.Reminders.Window.Duration())
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Log.Level)
	return nil
}
