package typedesc

import "strings"

// Primitive names understood by the schema resolver's basic-type table.
// Names outside this list are still valid primitives; the resolver decides
// whether it can map them.
const (
	PrimitiveString   = "string"
	PrimitiveInteger  = "integer"
	PrimitiveNumber   = "number"
	PrimitiveBoolean  = "boolean"
	PrimitiveBytes    = "bytes"
	PrimitiveDateTime = "date-time"
	PrimitiveDate     = "date"
	PrimitiveUUID     = "uuid"
	PrimitiveAny      = "any"
	PrimitiveNull     = "null"
)

// Descriptor is a closed union over the shapes a declared type can take:
// Primitive, ArrayOf, Record and Unknown. Descriptors are immutable trees.
type Descriptor interface {
	// String returns a compact, Go-like rendering used in logs and errors.
	String() string

	isDescriptor()
}

// Primitive is a scalar type identified by name (e.g. "string").
type Primitive struct {
	Name string
}

// ArrayOf is an ordered, homogeneous sequence of Elem.
type ArrayOf struct {
	Elem Descriptor
}

// Field is a single named member of a Record.
type Field struct {
	Name     string
	Type     Descriptor
	Optional bool
}

// Record is a structured type with a fixed, ordered set of typed fields.
// Name and PkgPath identify the declaration the record came from and are
// used for component naming; both may be empty for anonymous records.
type Record struct {
	Name    string
	PkgPath string
	Fields  []Field
}

// Unknown is the fallback for shapes no other variant describes.
type Unknown struct {
	Reason string
}

func (Primitive) isDescriptor() {}
func (ArrayOf) isDescriptor()   {}
func (Record) isDescriptor()    {}
func (Unknown) isDescriptor()   {}

func (p Primitive) String() string { return p.Name }

func (a ArrayOf) String() string {
	if a.Elem == nil {
		return "[]?"
	}
	return "[]" + a.Elem.String()
}

func (r Record) String() string {
	if r.Name != "" {
		return r.Name
	}

	var b strings.Builder
	b.WriteString("{")
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		if f.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		if f.Type == nil {
			b.WriteString("?")
		} else {
			b.WriteString(f.Type.String())
		}
	}
	b.WriteString("}")
	return b.String()
}

func (u Unknown) String() string {
	if u.Reason == "" {
		return "unknown"
	}
	return "unknown(" + u.Reason + ")"
}

// Field returns the field with the given name.
func (r Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in declaration order.
func (r Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}
