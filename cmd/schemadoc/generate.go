package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vitalvas/schemadoc/config"
	"github.com/vitalvas/schemadoc/docgen"
)

type generateOptions struct {
	format string
	output string
	watch  bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document",
		Long: `Build the OpenAPI document described by the configuration file and
write it to the configured output.

Examples:
  schemadoc generate
  schemadoc generate --format yaml --output openapi.yaml
  schemadoc generate --watch --output openapi.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or yaml (overrides config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output path, "-" for stdout (overrides config)`)
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild when the config file changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	cfg, err := config.Load(root.configFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	gen := docgen.NewGenerator(root.configFile,
		docgen.WithOverrides(docgen.Overrides{Format: opts.format, Output: opts.output}),
		docgen.WithStdout(cmd.OutOrStdout()),
		docgen.WithLogger(logger),
	)

	if err := gen.Generate(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	watcher, err := docgen.NewWatcher(root.configFile, docgen.WithWatchLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watcher.Run(ctx, gen.Generate)
}
