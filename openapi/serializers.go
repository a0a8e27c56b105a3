package openapi

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vitalvas/schemadoc/typedesc"
)

// SerializeMethod is the method whose declared return type documents a
// serializer's output.
const SerializeMethod = "Serialize"

const componentRefPrefix = "#/components/schemas/"

var (
	// ErrDuplicateComponent is returned when a component name is already taken.
	ErrDuplicateComponent = errors.New("openapi: component already registered")

	// ErrNoSchema is returned when a registered type resolves to no schema.
	ErrNoSchema = errors.New("openapi: type has no schema")

	// ErrEmptyComponentName is returned when registering a component without a name.
	ErrEmptyComponentName = errors.New("openapi: empty component name")
)

// Ref returns a schema referencing the named component.
//
// See: https://json-schema.org/draft/2020-12/json-schema-core#section-8.2.3 ($ref)
func Ref(name string) *Schema {
	return &Schema{Ref: componentRefPrefix + name}
}

// Serializers registers serializer output types as reusable component
// schemas. A serializer is any value with a Serialize method; its
// component is named after the serializer type and its schema is the
// resolved declared return type of Serialize.
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
type Serializers struct {
	resolver  *Resolver
	schemas   map[string]*Schema
	typeNames map[reflect.Type]string // type -> chosen component name
	nameTypes map[string]reflect.Type // component name -> type that claimed it, nil for raw descriptors
}

// NewSerializers creates an empty registry resolving with r. A nil r
// selects a default resolver.
func NewSerializers(r *Resolver) *Serializers {
	if r == nil {
		r = NewResolver()
	}
	return &Serializers{
		resolver:  r,
		schemas:   make(map[string]*Schema),
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
	}
}

// Register adds the serializer's output as a component and returns a
// $ref to it. Registering the same serializer type twice returns the
// existing reference.
func (s *Serializers) Register(serializer any) (*Schema, error) {
	if serializer == nil {
		return nil, typedesc.ErrNilTarget
	}

	t := reflect.TypeOf(serializer)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name, ok := s.typeNames[t]; ok {
		return Ref(name), nil
	}

	d, err := typedesc.FromMethod(serializer, SerializeMethod)
	if err != nil {
		return nil, fmt.Errorf("register serializer %s: %w", t, err)
	}

	return s.registerType(t, d)
}

// RegisterDescriptor adds a component with an explicit name and
// descriptor, for outputs that have no serializer type.
func (s *Serializers) RegisterDescriptor(name string, d typedesc.Descriptor) (*Schema, error) {
	if name == "" {
		return nil, ErrEmptyComponentName
	}
	if _, taken := s.nameTypes[name]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}

	schema := s.resolver.Resolve(d)
	if schema == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSchema, name)
	}

	s.schemas[name] = schema
	s.nameTypes[name] = nil
	return Ref(name), nil
}

// registerType stores the resolved schema of d under a unique name
// derived from t.
func (s *Serializers) registerType(t reflect.Type, d typedesc.Descriptor) (*Schema, error) {
	if name, ok := s.typeNames[t]; ok {
		return Ref(name), nil
	}

	schema := s.resolver.Resolve(d)
	if schema == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSchema, t)
	}

	name := s.componentName(t)
	s.schemas[name] = schema
	return Ref(name), nil
}

// Schemas returns the registered component schemas.
func (s *Serializers) Schemas() map[string]*Schema {
	return s.schemas
}

// Lookup returns the component schema registered under name.
func (s *Serializers) Lookup(name string) (*Schema, bool) {
	schema, ok := s.schemas[name]
	return schema, ok
}

// componentName returns a unique component name for t. If two types from
// different packages share the same simple name, the later one is
// prefixed with its package's last path segment (e.g. "ApiProject"); if
// that still collides a numeric suffix is appended (e.g. "ApiProject2").
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
func (s *Serializers) componentName(t reflect.Type) string {
	simple := componentTypeName(t)

	name := simple
	if existing, ok := s.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := s.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := s.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	s.typeNames[t] = name
	s.nameTypes[name] = t
	return name
}

// componentTypeName returns the sanitized simple name of t, falling back
// to its kind for unnamed types.
func componentTypeName(t reflect.Type) string {
	if name := typedesc.TypeName(t); name != "" {
		return name
	}
	return t.Kind().String()
}

// pkgPrefix extracts the last segment of a Go package path and capitalizes
// it for use as a component name prefix (e.g., "net/http" -> "Http").
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if len(pkgPath) == 0 {
		return ""
	}
	pkgPath = strings.ReplaceAll(pkgPath, "-", "_")
	pkgPath = strings.ReplaceAll(pkgPath, ".", "_")
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}
