package typedesc

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFunc is returned when FromFunc receives something that is not a function.
	ErrNotFunc = errors.New("typedesc: not a function")

	// ErrNoResult is returned when a function or method declares no value result.
	ErrNoResult = errors.New("typedesc: function has no result")

	// ErrMethodNotFound is returned when FromMethod cannot find the named method.
	ErrMethodNotFound = errors.New("typedesc: method not found")

	// ErrNilTarget is returned when FromMethod receives a nil value.
	ErrNilTarget = errors.New("typedesc: nil target")
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	uuidType       = reflect.TypeFor[uuid.UUID]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
	errorType      = reflect.TypeFor[error]()
)

// FromValue describes the dynamic type of v. A nil v yields Unknown.
func FromValue(v any) Descriptor {
	if v == nil {
		return Unknown{Reason: "nil value"}
	}
	return FromType(reflect.TypeOf(v))
}

// FromType describes a Go type. Struct types become records whose fields
// follow encoding/json naming; a struct that contains itself is cut off
// with Unknown at the point of recursion.
func FromType(t reflect.Type) Descriptor {
	if t == nil {
		return Unknown{Reason: "nil type"}
	}
	w := &walker{inProgress: make(map[reflect.Type]bool)}
	return w.describe(t)
}

// FromFunc describes the declared return type of fn: its first result,
// unless that result is the error type.
func FromFunc(fn any) (Descriptor, error) {
	if fn == nil {
		return nil, ErrNotFunc
	}
	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s", ErrNotFunc, t)
	}
	return describeResult(t)
}

// FromMethod describes the declared return type of the named method on v.
// Methods with pointer receivers are found when v is passed by value.
func FromMethod(v any, name string) (Descriptor, error) {
	if v == nil {
		return nil, ErrNilTarget
	}

	t := reflect.TypeOf(v)
	m, ok := t.MethodByName(name)
	if !ok && t.Kind() != reflect.Pointer {
		m, ok = reflect.PointerTo(t).MethodByName(name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, t, name)
	}

	d, err := describeResult(m.Type)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", t, name, err)
	}
	return d, nil
}

func describeResult(t reflect.Type) (Descriptor, error) {
	if t.NumOut() == 0 || t.Out(0) == errorType {
		return nil, ErrNoResult
	}
	return FromType(t.Out(0)), nil
}

type walker struct {
	inProgress map[reflect.Type]bool
}

func (w *walker) describe(t reflect.Type) Descriptor {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return Primitive{Name: PrimitiveDateTime}
	case uuidType:
		return Primitive{Name: PrimitiveUUID}
	case rawMessageType:
		return Primitive{Name: PrimitiveAny}
	}

	switch t.Kind() {
	case reflect.Bool:
		return Primitive{Name: PrimitiveBoolean}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Primitive{Name: PrimitiveInteger}

	case reflect.Float32, reflect.Float64:
		return Primitive{Name: PrimitiveNumber}

	case reflect.String:
		return Primitive{Name: PrimitiveString}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Primitive{Name: PrimitiveBytes}
		}
		return ArrayOf{Elem: w.describe(t.Elem())}

	case reflect.Array:
		return ArrayOf{Elem: w.describe(t.Elem())}

	case reflect.Struct:
		return w.describeStruct(t)

	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Primitive{Name: PrimitiveAny}
		}
		return Unknown{Reason: "interface " + t.String()}

	case reflect.Map:
		return Unknown{Reason: "map " + t.String()}
	}

	return Unknown{Reason: t.Kind().String()}
}

func (w *walker) describeStruct(t reflect.Type) Descriptor {
	if w.inProgress[t] {
		return Unknown{Reason: "recursive type " + t.String()}
	}
	w.inProgress[t] = true
	defer delete(w.inProgress, t)

	var candidates []fieldCandidate
	w.collectFields(t, 0, false, &candidates)

	return Record{
		Name:    sanitizeTypeName(t.Name()),
		PkgPath: t.PkgPath(),
		Fields:  dominantFields(candidates),
	}
}

// fieldCandidate is a field seen while inlining embedded structs, before
// encoding/json dominance rules pick one field per name.
type fieldCandidate struct {
	field  Field
	depth  int
	tagged bool
}

// collectFields appends the exported fields of t to out in declaration
// order. Fields of pointer-embedded structs are optional because the whole
// embedded value can be nil.
func (w *walker) collectFields(t reflect.Type, depth int, allOptional bool, out *[]fieldCandidate) {
	for i := range t.NumField() {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseJSONTag(jsonTag)

		// Embedded structs are inlined only without an explicit json name,
		// and unexported embedded structs still contribute their fields.
		if field.Anonymous {
			ft := field.Type
			isPtr := ft.Kind() == reflect.Pointer
			if isPtr {
				ft = ft.Elem()
			}
			if name == "" && ft.Kind() == reflect.Struct {
				w.inlineEmbedded(ft, depth+1, allOptional || isPtr, out)
				continue
			}
			if !field.IsExported() && ft.Kind() != reflect.Struct {
				continue
			}
		} else if !field.IsExported() {
			continue
		}

		tagged := name != ""
		if !tagged {
			name = field.Name
		}

		var desc Descriptor
		if opts.stringEncode && isStringEncodable(field.Type) {
			desc = Primitive{Name: PrimitiveString}
		} else {
			desc = w.describe(field.Type)
		}

		*out = append(*out, fieldCandidate{
			field: Field{
				Name:     name,
				Type:     desc,
				Optional: allOptional || opts.omitempty || field.Type.Kind() == reflect.Pointer,
			},
			depth:  depth,
			tagged: tagged,
		})
	}
}

// inlineEmbedded collects the fields of an embedded struct. A struct that
// is already being described is skipped: encoding/json would shadow all of
// its fields with the shallower copies anyway.
func (w *walker) inlineEmbedded(t reflect.Type, depth int, allOptional bool, out *[]fieldCandidate) {
	if w.inProgress[t] {
		return
	}
	w.inProgress[t] = true
	defer delete(w.inProgress, t)

	w.collectFields(t, depth, allOptional, out)
}

// dominantFields keeps one field per JSON name the way encoding/json does:
// the shallowest field wins, a tagged field beats untagged ones at the
// same depth, and a name that stays ambiguous is dropped.
func dominantFields(candidates []fieldCandidate) []Field {
	byName := make(map[string][]int, len(candidates))
	for i, c := range candidates {
		byName[c.field.Name] = append(byName[c.field.Name], i)
	}

	winners := make(map[string]int, len(byName))
	for name, idx := range byName {
		if w, ok := dominantField(candidates, idx); ok {
			winners[name] = w
		}
	}

	var fields []Field
	for i, c := range candidates {
		if w, ok := winners[c.field.Name]; ok && w == i {
			fields = append(fields, c.field)
		}
	}
	return fields
}

func dominantField(candidates []fieldCandidate, idx []int) (int, bool) {
	if len(idx) == 1 {
		return idx[0], true
	}

	minDepth := candidates[idx[0]].depth
	for _, i := range idx[1:] {
		minDepth = min(minDepth, candidates[i].depth)
	}

	var shallow []int
	for _, i := range idx {
		if candidates[i].depth == minDepth {
			shallow = append(shallow, i)
		}
	}
	if len(shallow) == 1 {
		return shallow[0], true
	}

	winner, tagged := -1, 0
	for _, i := range shallow {
		if candidates[i].tagged {
			winner = i
			tagged++
		}
	}
	return winner, tagged == 1
}

// isStringEncodable reports whether the ",string" tag option applies to t.
func isStringEncodable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	var opts jsonTagOpts
	for _, opt := range strings.Split(rest, ",") {
		switch opt {
		case "omitempty", "omitzero":
			opts.omitempty = true
		case "string":
			opts.stringEncode = true
		}
	}
	return name, opts
}

// TypeName returns the record name used for t: its declared name with
// generic instantiations flattened.
func TypeName(t reflect.Type) string {
	return sanitizeTypeName(t.Name())
}

// sanitizeTypeName turns generic instantiation names such as
// "Page[github.com/acme/api.Project]" into "PageProject", and
// "Page[[]Project]" into "PageProjectList".
func sanitizeTypeName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}
