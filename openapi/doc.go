// Package openapi resolves type descriptors into OpenAPI v3.1.0 schema
// fragments and assembles them into documents.
//
// See: https://spec.openapis.org/oas/v3.1.0
// See: https://json-schema.org/draft/2020-12/json-schema-core
//
// # Schema Resolution
//
// A Resolver maps a typedesc.Descriptor to a *Schema. Rules are checked
// in order:
//
//   - Record -> {type: "object", properties: {...}, required: []}
//   - known Primitive -> {type: "string"}, {type: "integer"}, ...
//   - ArrayOf(T) -> {type: "array", items: schema(T)}
//   - anything else -> {type: "string", required: true}
//
// Properties keep declaration order. A field whose primitive has no
// mapping (for example "null") is left out instead of failing the
// record. Resolution never returns an error:
//
//	r := openapi.NewResolver()
//	s := r.Resolve(typedesc.Record{Fields: []typedesc.Field{
//	    {Name: "id", Type: typedesc.Primitive{Name: "string"}},
//	    {Name: "tags", Type: typedesc.ArrayOf{Elem: typedesc.Primitive{Name: "string"}}},
//	}})
//
// By default "required" is always empty. Use RequiredNonOptional to list
// every field that is not optional:
//
//	r := openapi.NewResolver(openapi.WithRequiredPolicy(openapi.RequiredNonOptional))
//
// Supported primitives:
//
//   - string, integer, number, boolean
//   - bytes -> {type: "string", format: "byte"}
//   - date-time, date, uuid -> {type: "string", format: ...}
//   - any -> {}
//
// WithPrimitive adds or overrides entries.
//
// # Token Authentication
//
// TokenAuth documents bearer-token authentication. Its security
// requirement is the union of the scopes each permission checker declares
// for the operation's method:
//
//	auth := openapi.NewTokenAuth(openapi.DefaultTokenAuthName)
//	req := auth.SecurityRequirement(http.MethodGet,
//	    openapi.StaticPermission{"GET": {"project:read"}},
//	    openapi.StaticPermission{"GET": {"project:read", "project:write"}},
//	)
//	// {"auth_token": ["project:read", "project:write"]}
//
// # Serializers
//
// A serializer is any value with a Serialize method. Serializers
// registers its declared return type as a component named after the
// serializer type:
//
//	type ProjectSerializer struct{}
//
//	func (ProjectSerializer) Serialize(p *models.Project) ProjectResponse { ... }
//
//	reg := openapi.NewSerializers(nil)
//	ref, err := reg.Register(ProjectSerializer{})
//	// ref: {"$ref": "#/components/schemas/ProjectSerializer"}
//
// # Spec Builder
//
// Spec assembles operations into a Document:
//
//	spec := openapi.NewSpec(openapi.Info{Title: "Projects", Version: "1.0.0"}).
//	    SetAuth(openapi.NewTokenAuth(""))
//
//	projects := spec.Group().
//	    Tags("projects").
//	    Permissions(ProjectPermission{})
//
//	projects.Operation(http.MethodGet, "/projects/{project_id}/").
//	    Summary("Retrieve a project").
//	    Response(http.StatusOK, ProjectSerializer{})
//
//	doc := spec.Build()
//	data, err := doc.JSON()
//
// Response bodies may be a *Schema, a typedesc.Descriptor, a serializer,
// or any Go value. Serializers and named structs become components;
// everything else is inlined.
package openapi
