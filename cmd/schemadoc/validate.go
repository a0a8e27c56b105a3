package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitalvas/schemadoc/config"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Validate the schemadoc configuration file.

Checks:
  - YAML syntax is valid
  - Type declarations are well formed and acyclic
  - Operations use supported methods and unique paths

Examples:
  schemadoc validate
  schemadoc validate --config api/schemadoc.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, root)
		},
	}
}

func runValidate(cmd *cobra.Command, root *rootOptions) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", root.configFile)

	cfg, err := config.Load(root.configFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)

	fmt.Fprintf(out, "  %s Title: %s (%s)\n", checkMark, cfg.Info.Title, cfg.Info.Version)
	fmt.Fprintf(out, "  %s Types declared: %d\n", checkMark, cfg.Types.Len())
	fmt.Fprintf(out, "  %s Operations: %d\n", checkMark, cfg.OperationCount())
	if cfg.Auth.Enabled {
		fmt.Fprintf(out, "  %s Token auth: %s\n", checkMark, cfg.Auth.Name)
	}
	fmt.Fprintf(out, "  %s Output: %s (%s)\n", checkMark, cfg.Output.Path, cfg.Output.Format)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}
