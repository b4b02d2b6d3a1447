package main

import (
	"fmt"
	"io"

	"github.com/jpalmerr/crashwatch/internal/browser"
	"github.com/spf13/cobra"
)

// installCmd downloads the browser used by the playwright driver.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the playwright driver and Chromium",
	Long: `Download the playwright driver and the Chromium build it controls.

Needed once per machine before "crashwatch run" can use the default
playwright driver. The static driver needs no browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		out := cmd.OutOrStdout()
		if quiet {
			out = io.Discard
		}
		if err := browser.Install(out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Chromium is ready.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().BoolP("quiet", "q", false, "hide installer output")
}
