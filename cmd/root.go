// Package cmd defines the CLI commands for the vmgdwatch scraper.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmgdwatch",
		Short: "Scrapes weather forecasts and warnings from the VMGD website",
		Long: `vmgdwatch fetches the public pages of the Vanuatu Meteorology and
Geo-hazards Department website, parses forecasts and warnings out of
them, and stores the results in PostgreSQL. Failures are recorded as
deduplicated page errors with HTML snapshots for review.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults apply when unset)")
	cmd.AddCommand(newRunCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
