// Package main is the entry point for the crashwatch CLI.
//
// crashwatch can be run either as a library (SDK) or as a standalone binary
// with optional YAML configuration. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	crashwatch run                       # Watch the default crash page for 6 minutes
//	crashwatch run -c crashwatch.yaml    # Watch with a config file
//	crashwatch validate -c crashwatch.yaml
//	crashwatch history -n 20             # Show the latest recorded values
//	crashwatch watch                     # Follow the history file
//	crashwatch install                   # Download Chromium for playwright
//	crashwatch version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "crashwatch",
	Short: "Record crash values from a live game page",
	Long: `crashwatch watches a page element for a bounded time and records every
change of its value.

Each new value is prepended to a JSON history file and appended to a CSV
table. Runs last 6 minutes unless MONITOR_DURATION (whole minutes),
the config file or --duration say otherwise.

Quick start:
  1. Run: crashwatch install
  2. Run: crashwatch run
  3. Inspect: crashwatch history

Example config:
  duration: 10m
  target:
    url: https://faucetpay.io/crash
    selector: "#crash-payout-text"
    extractor: "prefix:Crashed @"`,
	SilenceUsage: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this crashwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "crashwatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
