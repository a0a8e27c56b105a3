package openapi

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vitalvas/schemadoc/typedesc"
)

// pathVarRegexp matches path template variables in the form {name}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// SpecOption configures a Spec.
type SpecOption func(*Spec)

// WithResolver sets the resolver used for every schema in the document.
func WithResolver(r *Resolver) SpecOption {
	return func(s *Spec) {
		s.resolver = r
	}
}

// WithBuildLogger sets the logger for document build diagnostics.
func WithBuildLogger(logger zerolog.Logger) SpecOption {
	return func(s *Spec) {
		s.logger = logger
	}
}

type namedDescriptor struct {
	name string
	desc typedesc.Descriptor
}

// Spec collects OpenAPI metadata for operations and builds a complete Document.
type Spec struct {
	info         Info
	servers      []Server
	tags         []Tag
	externalDocs *ExternalDocs
	auth         *TokenAuth
	resolver     *Resolver
	logger       zerolog.Logger

	operations []*OperationBuilder
	components []namedDescriptor
}

// NewSpec creates a new spec builder with the given API info.
func NewSpec(info Info, opts ...SpecOption) *Spec {
	s := &Spec{
		info:   info,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = NewResolver(WithLogger(s.logger))
	}
	return s
}

// AddServer adds a server to the spec.
func (s *Spec) AddServer(server Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddTag adds a user-defined tag with an optional description.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Spec) SetExternalDocs(url, description string) *Spec {
	s.externalDocs = &ExternalDocs{URL: url, Description: description}
	return s
}

// SetAuth enables token authentication for every non-public operation.
func (s *Spec) SetAuth(auth *TokenAuth) *Spec {
	s.auth = auth
	return s
}

// AddComponent registers a named descriptor as a component schema.
// Components are registered in the order they are added.
func (s *Spec) AddComponent(name string, d typedesc.Descriptor) *Spec {
	s.components = append(s.components, namedDescriptor{name: name, desc: d})
	return s
}

// Operation returns the OperationBuilder for method and path, creating it
// on first use. Methods are case-insensitive.
func (s *Spec) Operation(method, path string) *OperationBuilder {
	method = strings.ToUpper(method)
	for _, b := range s.operations {
		if b.method == method && b.path == path {
			return b
		}
	}
	b := newOperationBuilder(method, path)
	s.operations = append(s.operations, b)
	return b
}

type buildContext struct {
	resolver    *Resolver
	serializers *Serializers
	auth        *TokenAuth
	logger      zerolog.Logger
}

// Build assembles a complete OpenAPI Document. It never fails: schemas
// that cannot be produced are logged and documented with the fallback.
func (s *Spec) Build() *Document {
	bc := &buildContext{
		resolver:    s.resolver,
		serializers: NewSerializers(s.resolver),
		auth:        s.auth,
		logger:      s.logger,
	}

	doc := &Document{
		OpenAPI:      "3.1.0",
		Info:         s.info,
		Servers:      s.servers,
		ExternalDocs: s.externalDocs,
	}

	for _, c := range s.components {
		if _, err := bc.serializers.RegisterDescriptor(c.name, c.desc); err != nil {
			s.logger.Warn().Err(err).Str("component", c.name).Msg("component not registered")
		}
	}

	if len(s.operations) > 0 {
		doc.Paths = make(map[string]*PathItem)
	}

	for _, b := range s.operations {
		openAPIPath, pathParams := parsePath(b.path)

		pathItem, ok := doc.Paths[openAPIPath]
		if !ok {
			pathItem = &PathItem{}
		}

		op := b.buildOperation(bc, pathParams)
		if !assignOperation(pathItem, b.method, op) {
			s.logger.Warn().Str("method", b.method).Str("path", b.path).Msg("unsupported method, operation skipped")
			continue
		}
		doc.Paths[openAPIPath] = pathItem
	}

	doc.Components = s.buildComponents(bc.serializers)
	doc.Tags = s.mergeTags(doc.Paths)

	return doc
}

// buildComponents assembles the Components object from registered schemas
// and the token auth scheme.
func (s *Spec) buildComponents(serializers *Serializers) *Components {
	schemas := serializers.Schemas()
	if len(schemas) == 0 && s.auth == nil {
		return nil
	}

	comp := &Components{}
	if len(schemas) > 0 {
		comp.Schemas = schemas
	}
	if s.auth != nil {
		comp.SecuritySchemes = map[string]*SecurityScheme{
			s.auth.Name(): s.auth.SecurityDefinition(),
		}
	}
	return comp
}

// mergeTags combines tags used by operations with user-defined tags.
// User-defined tags keep their description. The result is sorted by name.
func (s *Spec) mergeTags(paths map[string]*PathItem) []Tag {
	userTags := make(map[string]Tag, len(s.tags))
	for _, tag := range s.tags {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag

	for _, pathItem := range paths {
		for _, op := range []*Operation{
			pathItem.Get, pathItem.Post, pathItem.Put,
			pathItem.Delete, pathItem.Patch, pathItem.Head,
			pathItem.Options, pathItem.Trace,
		} {
			if op == nil {
				continue
			}
			for _, tagName := range op.Tags {
				if seen[tagName] {
					continue
				}
				seen[tagName] = true
				if userTag, ok := userTags[tagName]; ok {
					tags = append(tags, userTag)
				} else {
					tags = append(tags, Tag{Name: tagName})
				}
			}
		}
	}

	for _, tag := range s.tags {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags
}

// assignOperation assigns an operation to the HTTP method field on the
// path item. It reports false for methods a path item cannot hold.
func assignOperation(pathItem *PathItem, method string, op *Operation) bool {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodHead:
		pathItem.Head = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	default:
		return false
	}
	return true
}

// parsePath extracts {name} variables from a path template and returns
// the OpenAPI path with a required string parameter for each variable.
// A "{name:pattern}" variable is shortened to "{name}".
func parsePath(tpl string) (string, []*Parameter) {
	var params []*Parameter

	openAPIPath := pathVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		inner := match[1 : len(match)-1]
		varName, _, _ := strings.Cut(inner, ":")

		params = append(params, &Parameter{
			Name:     varName,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
		return "{" + varName + "}"
	})

	return openAPIPath, params
}
