package main

import (
	"fmt"

	"github.com/jpalmerr/crashwatch/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting a run.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a crashwatch configuration file without opening the page.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  crashwatch validate -c crashwatch.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// the SDK options run their own checks
	if _, err := config.BuildOptions(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	driver := cfg.Target.Driver
	if driver == "" {
		driver = "playwright"
	}
	extractor := cfg.Target.Extractor.Type
	if extractor == "" {
		extractor = "default"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Target:        %s (%s)\n", cfg.Target.Name, cfg.Target.URL)
	fmt.Fprintf(out, "  Selector:      %s\n", cfg.Target.Selector)
	fmt.Fprintf(out, "  Driver:        %s\n", driver)
	fmt.Fprintf(out, "  Extractor:     %s\n", extractor)
	fmt.Fprintf(out, "  Duration:      %s\n", cfg.Duration.Duration())
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Reload after:  %d missing / %d errors\n", *cfg.MissingThreshold, *cfg.ErrorThreshold)
	fmt.Fprintf(out, "  Output:        %s, %s\n", cfg.HistoryFile, cfg.TableFile)
	if cfg.DashboardPort != 0 {
		fmt.Fprintf(out, "  Dashboard:     http://localhost:%d\n", cfg.DashboardPort)
	}

	return nil
}
