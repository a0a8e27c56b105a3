package openapi

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vitalvas/schemadoc/typedesc"
)

// RequiredPolicy decides which record fields are listed in an object
// schema's "required" keyword.
type RequiredPolicy int

const (
	// RequiredNone never lists any field. Object schemas carry an empty
	// "required" list regardless of field optionality.
	RequiredNone RequiredPolicy = iota

	// RequiredNonOptional lists every resolved field not marked optional.
	RequiredNonOptional
)

// String returns the configuration name of the policy.
func (p RequiredPolicy) String() string {
	switch p {
	case RequiredNone:
		return "none"
	case RequiredNonOptional:
		return "non-optional"
	default:
		return fmt.Sprintf("RequiredPolicy(%d)", int(p))
	}
}

// ParseRequiredPolicy parses a policy name as produced by String.
// The empty string selects RequiredNone.
func ParseRequiredPolicy(s string) (RequiredPolicy, error) {
	switch s {
	case "", "none":
		return RequiredNone, nil
	case "non-optional":
		return RequiredNonOptional, nil
	default:
		return RequiredNone, fmt.Errorf("unknown required policy %q", s)
	}
}

// basicType is an entry of the primitive table. An empty typ produces the
// empty schema, which accepts any value.
type basicType struct {
	typ    string
	format string
}

// defaultBasicTypes maps primitive names to JSON Schema types. Names
// missing from the table, such as "null", have no schema.
//
// See: https://spec.openapis.org/oas/v3.1.0#data-types
var defaultBasicTypes = map[string]basicType{
	typedesc.PrimitiveString:   {typ: "string"},
	typedesc.PrimitiveInteger:  {typ: "integer"},
	typedesc.PrimitiveNumber:   {typ: "number"},
	typedesc.PrimitiveBoolean:  {typ: "boolean"},
	typedesc.PrimitiveBytes:    {typ: "string", format: "byte"},
	typedesc.PrimitiveDateTime: {typ: "string", format: "date-time"},
	typedesc.PrimitiveDate:     {typ: "string", format: "date"},
	typedesc.PrimitiveUUID:     {typ: "string", format: "uuid"},
	typedesc.PrimitiveAny:      {},
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRequiredPolicy sets how object schemas fill "required".
func WithRequiredPolicy(p RequiredPolicy) ResolverOption {
	return func(r *Resolver) {
		r.required = p
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithPrimitive adds or overrides a primitive mapping. An empty typ maps
// the primitive to the empty schema.
func WithPrimitive(name, typ, format string) ResolverOption {
	return func(r *Resolver) {
		r.basic[name] = basicType{typ: typ, format: format}
	}
}

// Resolver maps type descriptors to schemas. It never fails: shapes it has
// no rule for degrade to a permissive fallback. A Resolver is immutable
// after construction and safe for concurrent use.
type Resolver struct {
	basic    map[string]basicType
	required RequiredPolicy
	logger   zerolog.Logger
}

// NewResolver creates a resolver with the default primitive table,
// RequiredNone and a no-op logger.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		basic:  make(map[string]basicType, len(defaultBasicTypes)),
		logger: zerolog.Nop(),
	}
	for name, bt := range defaultBasicTypes {
		r.basic[name] = bt
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequiredPolicy returns the resolver's required-field policy.
func (r *Resolver) RequiredPolicy() RequiredPolicy {
	return r.required
}

// Resolve produces the schema for d. Rules apply in order:
//
//  1. Record: object schema, one property per resolvable field in
//     declaration order.
//  2. Primitive: the mapped primitive schema, or nil when the primitive
//     has no mapping.
//  3. ArrayOf: array schema whose items are the resolved element.
//  4. Anything else: {"type": "string", "required": true}.
func (r *Resolver) Resolve(d typedesc.Descriptor) *Schema {
	switch d := d.(type) {
	case typedesc.Record:
		return r.resolveRecord(d)
	case typedesc.Primitive:
		return r.resolvePrimitive(d)
	case typedesc.ArrayOf:
		return &Schema{
			Type:  "array",
			Items: r.Resolve(d.Elem),
		}
	}

	event := r.logger.Debug()
	if d != nil {
		event = event.Str("type", d.String())
	}
	event.Msg("no schema rule matched, using fallback")

	return fallbackSchema()
}

// resolveRecord builds an object schema. Fields without a schema are left
// out of the properties.
//
// See: https://json-schema.org/draft/2020-12/json-schema-core#section-10.3.2.1 (properties)
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.5.3 (required)
func (r *Resolver) resolveRecord(rec typedesc.Record) *Schema {
	props := NewProperties()
	required := []string{}

	for _, field := range rec.Fields {
		fieldSchema := r.Resolve(field.Type)
		if fieldSchema == nil {
			r.logger.Debug().
				Str("record", rec.String()).
				Str("field", field.Name).
				Msg("field has no schema, omitting")
			continue
		}

		props.Set(field.Name, fieldSchema)

		if r.required == RequiredNonOptional && !field.Optional {
			required = append(required, field.Name)
		}
	}

	return &Schema{
		Type:       "object",
		Properties: props,
		Required:   RequiredNames(required...),
	}
}

func (r *Resolver) resolvePrimitive(p typedesc.Primitive) *Schema {
	bt, ok := r.basic[p.Name]
	if !ok {
		r.logger.Debug().Str("primitive", p.Name).Msg("primitive has no schema mapping")
		return nil
	}
	return &Schema{Type: bt.typ, Format: bt.format}
}

// fallbackSchema is the permissive schema used for shapes without a rule.
func fallbackSchema() *Schema {
	return &Schema{
		Type:     "string",
		Required: RequiredFlag(),
	}
}

var defaultResolver = NewResolver()

// Resolve resolves d with the default resolver.
func Resolve(d typedesc.Descriptor) *Schema {
	return defaultResolver.Resolve(d)
}
