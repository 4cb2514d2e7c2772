// Package main is the entry point for the healthcheck CLI.
//
// Usage:
//
//	healthcheck run -f endpoints.yaml       # probe endpoints every cycle
//	healthcheck validate -f endpoints.yaml  # check the endpoint file
//	healthcheck version                     # show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Periodic HTTP availability checker",
	Long: `healthcheck probes a list of HTTP endpoints on a fixed cycle and reports
cumulative availability per domain.

Quick start:
  1. Describe endpoints in a YAML file (name, url, method, headers, body)
  2. Run: healthcheck run -f endpoints.yaml
  3. Stop with Ctrl-C`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "healthcheck %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
