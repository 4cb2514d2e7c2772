package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/healthcheck/internal/endpoints"
)

// validateCmd checks an endpoint file without probing anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an endpoint file",
	Long: `Parse and validate an endpoint file without sending any requests.
Every invalid record is reported.

Exit codes:
  0 - file is valid
  1 - file is invalid (details printed to stderr)

Example:
  healthcheck validate -f endpoints.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("file", "f", "", "path to YAML file with endpoints (required)")
	_ = validateCmd.MarkFlagRequired("file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	eps, err := endpoints.Load(path)
	if err != nil {
		return fmt.Errorf("invalid endpoint file: %w", err)
	}

	domains := make(map[string]struct{})
	for _, ep := range eps {
		domains[ep.Domain()] = struct{}{}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Endpoint file is valid!\n")
	fmt.Fprintf(out, "  Endpoints: %d\n", len(eps))
	fmt.Fprintf(out, "  Domains:   %d\n", len(domains))
	return nil
}
