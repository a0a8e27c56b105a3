package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vitalvas/schemadoc/config"
)

const defaultConfigFile = "schemadoc.yaml"

type rootOptions struct {
	configFile string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "schemadoc",
		Short: "Generate OpenAPI documents from type declarations",
		Long: `schemadoc resolves declared response types into OpenAPI schemas and
writes a complete OpenAPI 3.1 document.

Quick start:
  schemadoc validate            # Check the configuration
  schemadoc generate            # Write the document
  schemadoc generate --watch    # Rebuild on every change`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", defaultConfigFile, "config file path")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "schemadoc %s (commit: %s)\n", version, commit)
		},
	}
}

// newLogger builds the logger described by cfg. Logs go to w, never to
// stdout, which may carry the document.
func newLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
