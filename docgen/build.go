// Package docgen turns schemadoc configuration into rendered OpenAPI
// documents.
package docgen

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/vitalvas/schemadoc/config"
	"github.com/vitalvas/schemadoc/openapi"
	"github.com/vitalvas/schemadoc/typedesc"
)

// Build assembles the document described by cfg. Every declared type
// becomes a component schema; operation responses naming a declared type
// reference that component.
func Build(cfg *config.Config, logger zerolog.Logger) *openapi.Document {
	resolver := openapi.NewResolver(
		openapi.WithRequiredPolicy(cfg.RequiredPolicy()),
		openapi.WithLogger(logger),
	)

	spec := openapi.NewSpec(openapi.Info{
		Title:       cfg.Info.Title,
		Version:     cfg.Info.Version,
		Description: cfg.Info.Description,
	}, openapi.WithResolver(resolver), openapi.WithBuildLogger(logger))

	for _, s := range cfg.Servers {
		spec.AddServer(openapi.Server{URL: s.URL, Description: s.Description})
	}
	for _, tag := range cfg.Tags {
		spec.AddTag(openapi.Tag{Name: tag.Name, Description: tag.Description})
	}
	if cfg.Auth.Enabled {
		spec.SetAuth(openapi.NewTokenAuth(cfg.Auth.Name))
	}

	for _, name := range cfg.Types.Names() {
		d, _ := cfg.Types.Lookup(name)
		spec.AddComponent(name, d)
	}

	b := &builder{resolver: resolver, types: cfg.Types, logger: logger}

	for _, op := range cfg.Operations {
		b.operation(spec.Operation, op)
	}

	for _, g := range cfg.Groups {
		group := spec.Group().
			Tags(g.Tags...).
			Permissions(permissions(g.Permissions)...)
		if g.Public {
			group.Public()
		}
		if g.Deprecated {
			group.Deprecated()
		}
		for _, op := range g.Operations {
			b.operation(group.Operation, op)
		}
	}

	return spec.Build()
}

type builder struct {
	resolver *openapi.Resolver
	types    *typedesc.Declarations
	logger   zerolog.Logger
}

func (b *builder) operation(newOp func(method, path string) *openapi.OperationBuilder, op config.OperationConfig) {
	ob := newOp(op.Method, op.Path).
		OperationID(op.OperationID).
		Summary(op.Summary).
		Description(op.Description).
		Tags(op.Tags...).
		Permissions(permissions(op.Permissions)...)

	if op.Public {
		ob.Public()
	}
	if op.Deprecated {
		ob.Deprecated()
	}

	if op.Response == "" {
		ob.Response(op.Status, nil)
		return
	}
	ob.Response(op.Status, b.responseSchema(op.Response))
}

// responseSchema resolves a type expression. Declared names become
// component references, also as array elements.
func (b *builder) responseSchema(expr string) *openapi.Schema {
	expr = strings.TrimSpace(expr)

	if elem, ok := strings.CutPrefix(expr, "[]"); ok {
		return &openapi.Schema{Type: "array", Items: b.responseSchema(elem)}
	}
	// A declared type that resolves to nothing was never registered as a
	// component, so it cannot be referenced.
	if d, ok := b.types.Lookup(expr); ok && b.resolver.Resolve(d) != nil {
		return openapi.Ref(expr)
	}

	d, err := b.types.Expr(expr)
	if err != nil {
		b.logger.Warn().Err(err).Str("response", expr).Msg("invalid response type")
		d = typedesc.Unknown{Reason: expr}
	}

	schema := b.resolver.Resolve(d)
	if schema == nil {
		b.logger.Warn().Str("response", expr).Msg("response type has no schema, using fallback")
		return b.resolver.Resolve(typedesc.Unknown{Reason: expr})
	}
	return schema
}

func permissions(perms []config.Permission) []openapi.PermissionChecker {
	checkers := make([]openapi.PermissionChecker, 0, len(perms))
	for _, p := range perms {
		checkers = append(checkers, openapi.StaticPermission(p))
	}
	return checkers
}
