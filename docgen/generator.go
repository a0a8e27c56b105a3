package docgen

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/vitalvas/schemadoc/config"
	"github.com/vitalvas/schemadoc/openapi"
)

// Overrides replace configured output settings, typically from CLI flags.
// Empty fields keep the configured value.
type Overrides struct {
	Format string
	Output string
}

// Generator loads a configuration file and writes the document it
// describes. It is re-run by the Watcher on every change.
type Generator struct {
	path      string
	overrides Overrides
	stdout    io.Writer
	logger    zerolog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithOverrides sets output overrides.
func WithOverrides(o Overrides) GeneratorOption {
	return func(g *Generator) {
		g.overrides = o
	}
}

// WithStdout sets the writer used for the "-" output path.
func WithStdout(w io.Writer) GeneratorOption {
	return func(g *Generator) {
		g.stdout = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator for the configuration file at path.
func NewGenerator(path string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		path:   path,
		stdout: os.Stdout,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path returns the configuration file path.
func (g *Generator) Path() string {
	return g.path
}

// Generate loads the configuration, builds the document and writes it.
// A failed load leaves any previous output untouched.
func (g *Generator) Generate() error {
	cfg, err := config.Load(g.path)
	if err != nil {
		return err
	}

	formatName := cfg.Output.Format
	if g.overrides.Format != "" {
		formatName = g.overrides.Format
	}
	format, err := openapi.ParseFormat(formatName)
	if err != nil {
		return fmt.Errorf("output format: %w", err)
	}

	output := cfg.Output.Path
	if g.overrides.Output != "" {
		output = g.overrides.Output
	}

	doc := Build(cfg, g.logger)
	if err := Write(doc, format, output, g.stdout); err != nil {
		return err
	}

	components := 0
	if doc.Components != nil {
		components = len(doc.Components.Schemas)
	}
	g.logger.Info().
		Str("output", output).
		Str("format", string(format)).
		Int("operations", cfg.OperationCount()).
		Int("components", components).
		Msg("document written")

	return nil
}
