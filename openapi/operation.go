package openapi

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/vitalvas/schemadoc/typedesc"
)

// OperationBuilder provides a fluent API for documenting a single
// method and path. It assembles an Operation Object.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type OperationBuilder struct {
	method string
	path   string

	operationID  string
	summary      string
	description  string
	tags         []string
	deprecated   bool
	public       bool
	permissions  []PermissionChecker
	responses    map[string]any    // statusKey -> body, nil body = no content
	descriptions map[string]string // statusKey -> custom description
}

func newOperationBuilder(method, path string) *OperationBuilder {
	return &OperationBuilder{
		method:    method,
		path:      path,
		responses: make(map[string]any),
	}
}

// Method returns the HTTP method of the operation.
func (b *OperationBuilder) Method() string {
	return b.method
}

// Path returns the path template of the operation.
func (b *OperationBuilder) Path() string {
	return b.path
}

// OperationID sets the operation ID.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object (operationId)
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.operationID = id
	return b
}

// Summary sets the operation summary.
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.summary = s
	return b
}

// Description sets the operation description.
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.description = d
	return b
}

// Tags adds one or more tags to the operation.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.tags = append(b.tags, tags...)
	return b
}

// Deprecated marks the operation as deprecated.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.deprecated = true
	return b
}

// Permissions appends the permission checkers guarding the operation.
// Their scopes for the operation's method form its security requirement.
func (b *OperationBuilder) Permissions(checkers ...PermissionChecker) *OperationBuilder {
	b.permissions = append(b.permissions, checkers...)
	return b
}

// Public marks the operation as not requiring authentication, even when
// the Spec has token auth configured.
func (b *OperationBuilder) Public() *OperationBuilder {
	b.public = true
	return b
}

// Response registers an application/json response for the given status
// code. body may be a *Schema, a typedesc.Descriptor, a serializer (a
// value with a Serialize method) or any Go value described by reflection.
// Pass nil for a response with no content.
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object
func (b *OperationBuilder) Response(statusCode int, body any) *OperationBuilder {
	b.responses[strconv.Itoa(statusCode)] = body
	return b
}

// DefaultResponse registers the response for the "default" status key.
//
// See: https://spec.openapis.org/oas/v3.1.0#responses-object (default)
func (b *OperationBuilder) DefaultResponse(body any) *OperationBuilder {
	b.responses["default"] = body
	return b
}

// ResponseDescription overrides the description derived from the status text.
func (b *OperationBuilder) ResponseDescription(statusCode int, desc string) *OperationBuilder {
	if b.descriptions == nil {
		b.descriptions = make(map[string]string)
	}
	b.descriptions[strconv.Itoa(statusCode)] = desc
	return b
}

// buildOperation converts the collected metadata into an Operation Object.
func (b *OperationBuilder) buildOperation(bc *buildContext, pathParams []*Parameter) *Operation {
	op := &Operation{
		OperationID: b.operationID,
		Summary:     b.summary,
		Description: b.description,
		Tags:        b.tags,
		Deprecated:  b.deprecated,
		Parameters:  pathParams,
	}

	if bc.auth != nil && !b.public {
		op.Security = []SecurityRequirement{
			bc.auth.SecurityRequirement(b.method, b.permissions...),
		}
	}

	if len(b.responses) > 0 {
		op.Responses = make(map[string]*Response, len(b.responses))
		for key, body := range b.responses {
			desc := responseDescription(key)
			if custom, ok := b.descriptions[key]; ok {
				desc = custom
			}
			resp := &Response{Description: desc}
			if body != nil {
				resp.Content = map[string]*MediaType{
					"application/json": {Schema: bc.resolveBody(body)},
				}
			}
			op.Responses[key] = resp
		}
	}

	return op
}

// resolveBody returns the schema for a response body. Serializers and
// named Go structs become components; everything else is resolved inline.
// Registration failures are logged and documented with the fallback
// schema so that one odd endpoint never stops the build.
func (bc *buildContext) resolveBody(body any) *Schema {
	switch v := body.(type) {
	case *Schema:
		return v
	case typedesc.Descriptor:
		return bc.resolveDescriptor(v)
	}

	if hasSerializeMethod(body) {
		ref, err := bc.serializers.Register(body)
		if err != nil {
			bc.logger.Warn().Err(err).Msg("serializer not documented, using fallback schema")
			return fallbackSchema()
		}
		return ref
	}

	d := typedesc.FromValue(body)
	if rec, ok := d.(typedesc.Record); ok && rec.Name != "" && rec.PkgPath != "" {
		t := reflect.TypeOf(body)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		ref, err := bc.serializers.registerType(t, d)
		if err != nil {
			bc.logger.Warn().Err(err).Str("type", t.String()).Msg("type not documented, using fallback schema")
			return fallbackSchema()
		}
		return ref
	}

	return bc.resolveDescriptor(d)
}

// resolveDescriptor resolves an inline body. A descriptor without a schema
// still documents the body, with the fallback schema.
func (bc *buildContext) resolveDescriptor(d typedesc.Descriptor) *Schema {
	if schema := bc.resolver.Resolve(d); schema != nil {
		return schema
	}
	bc.logger.Warn().Str("type", d.String()).Msg("response body has no schema, using fallback")
	return fallbackSchema()
}

func hasSerializeMethod(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if _, ok := t.MethodByName(SerializeMethod); ok {
		return true
	}
	if t.Kind() != reflect.Pointer {
		_, ok := reflect.PointerTo(t).MethodByName(SerializeMethod)
		return ok
	}
	return false
}

// responseDescription returns a human-readable description for a response key.
func responseDescription(key string) string {
	if key == "default" {
		return "Default response"
	}
	code, err := strconv.Atoi(key)
	if err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}
