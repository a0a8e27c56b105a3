package typedesc

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	// ErrCyclicDeclaration is returned when declarations refer to each other in a loop.
	ErrCyclicDeclaration = errors.New("typedesc: cyclic declaration")

	// ErrInvalidDeclaration is returned for malformed declaration nodes.
	ErrInvalidDeclaration = errors.New("typedesc: invalid declaration")
)

// Declarations is an ordered set of named type declarations.
type Declarations struct {
	names    []string
	resolved map[string]Descriptor
}

// ParseDeclarations reads named declarations from a YAML mapping node.
// A mapping value declares a record; a scalar value declares an alias for
// a type expression. A nil, empty or null node yields no declarations.
func ParseDeclarations(node *yaml.Node) (*Declarations, error) {
	decls := &Declarations{resolved: make(map[string]Descriptor)}

	if node != nil && node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return decls, nil
		}
		node = node.Content[0]
	}
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return decls, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of type names", ErrInvalidDeclaration, node.Line)
	}

	p := &declParser{
		nodes:    make(map[string]*yaml.Node, len(node.Content)/2),
		resolved: decls.resolved,
		visiting: make(map[string]bool),
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, fmt.Errorf("%w: line %d: type name must be a non-empty string", ErrInvalidDeclaration, key.Line)
		}
		if _, dup := p.nodes[key.Value]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate type %q", ErrInvalidDeclaration, key.Line, key.Value)
		}
		p.nodes[key.Value] = value
		decls.names = append(decls.names, key.Value)
	}

	for _, name := range decls.names {
		if _, err := p.named(name); err != nil {
			return nil, err
		}
	}

	return decls, nil
}

// UnmarshalDeclarations parses declarations from a YAML document.
func UnmarshalDeclarations(data []byte) (*Declarations, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse declarations: %w", err)
	}
	return ParseDeclarations(&node)
}

// UnmarshalYAML implements yaml.Unmarshaler so declarations can be
// embedded in larger YAML documents.
func (d *Declarations) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDeclarations(node)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// Names returns the declared type names in file order.
func (d *Declarations) Names() []string {
	if d == nil {
		return nil
	}
	return d.names
}

// Lookup returns the descriptor declared under name.
func (d *Declarations) Lookup(name string) (Descriptor, bool) {
	if d == nil {
		return nil, false
	}
	desc, ok := d.resolved[name]
	return desc, ok
}

// Expr evaluates a type expression such as "[]Project" against the
// declared names. Unknown capitalized names yield Unknown.
func (d *Declarations) Expr(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty type expression", ErrInvalidDeclaration)
	}

	if elem, ok := strings.CutPrefix(s, "[]"); ok {
		desc, err := d.Expr(elem)
		if err != nil {
			return nil, err
		}
		return ArrayOf{Elem: desc}, nil
	}

	if desc, ok := d.Lookup(s); ok {
		return desc, nil
	}
	if isPrimitiveName(s) {
		return Primitive{Name: s}, nil
	}
	return Unknown{Reason: s}, nil
}

// Len returns the number of declarations.
func (d *Declarations) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

type declParser struct {
	nodes    map[string]*yaml.Node
	resolved map[string]Descriptor
	visiting map[string]bool
}

func (p *declParser) named(name string) (Descriptor, error) {
	if d, ok := p.resolved[name]; ok {
		return d, nil
	}
	if p.visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrCyclicDeclaration, name)
	}
	p.visiting[name] = true
	defer delete(p.visiting, name)

	node := p.nodes[name]

	var (
		d   Descriptor
		err error
	)
	switch node.Kind {
	case yaml.MappingNode:
		d, err = p.record(name, node)
	case yaml.ScalarNode:
		expr := strings.TrimSpace(node.Value)
		if strings.HasSuffix(expr, "?") {
			return nil, fmt.Errorf("%w: line %d: alias %s cannot be optional", ErrInvalidDeclaration, node.Line, name)
		}
		d, err = p.expr(expr, node.Line)
	default:
		return nil, fmt.Errorf("%w: line %d: %s must be a mapping or a type expression", ErrInvalidDeclaration, node.Line, name)
	}
	if err != nil {
		return nil, err
	}

	p.resolved[name] = d
	return d, nil
}

// record parses a mapping of field names to type expressions. Nested
// mappings declare anonymous records.
func (p *declParser) record(name string, node *yaml.Node) (Descriptor, error) {
	rec := Record{Name: name}
	seen := make(map[string]bool, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, fmt.Errorf("%w: line %d: field name must be a non-empty string", ErrInvalidDeclaration, key.Line)
		}
		if seen[key.Value] {
			return nil, fmt.Errorf("%w: line %d: duplicate field %q", ErrInvalidDeclaration, key.Line, key.Value)
		}
		seen[key.Value] = true

		field := Field{Name: key.Value}
		switch value.Kind {
		case yaml.MappingNode:
			nested, err := p.record("", value)
			if err != nil {
				return nil, err
			}
			field.Type = nested

		case yaml.ScalarNode:
			expr := strings.TrimSpace(value.Value)
			if trimmed, ok := strings.CutSuffix(expr, "?"); ok {
				field.Optional = true
				expr = trimmed
			}
			t, err := p.expr(expr, value.Line)
			if err != nil {
				return nil, err
			}
			field.Type = t

		default:
			return nil, fmt.Errorf("%w: line %d: field %q must be a type expression", ErrInvalidDeclaration, value.Line, key.Value)
		}

		rec.Fields = append(rec.Fields, field)
	}

	return rec, nil
}

func (p *declParser) expr(s string, line int) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: line %d: empty type expression", ErrInvalidDeclaration, line)
	}

	if elem, ok := strings.CutPrefix(s, "[]"); ok {
		d, err := p.expr(elem, line)
		if err != nil {
			return nil, err
		}
		return ArrayOf{Elem: d}, nil
	}

	if _, ok := p.nodes[s]; ok {
		return p.named(s)
	}

	if isPrimitiveName(s) {
		return Primitive{Name: s}, nil
	}

	return Unknown{Reason: s}, nil
}

// isPrimitiveName reports whether s looks like a primitive name: a
// lowercase identifier that may contain digits, '-' and '_'.
func isPrimitiveName(s string) bool {
	for i, r := range s {
		switch {
		case i == 0 && !unicode.IsLower(r):
			return false
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
