package openapi

import "strconv"

// groupDefaults holds the default metadata that a Group applies to every
// OperationBuilder it creates.
type groupDefaults struct {
	tags        []string
	permissions []PermissionChecker
	deprecated  bool
	public      bool
	responses   map[string]any
}

// Group provides shared metadata defaults for a logical group of
// operations, typically the methods served by one view. Operations created
// through the group start with its tags, permission checkers and responses.
type Group struct {
	spec     *Spec
	defaults groupDefaults
}

// Group creates a new Group on the spec.
func (s *Spec) Group() *Group {
	return &Group{spec: s}
}

// Tags appends tags to the group defaults.
func (g *Group) Tags(tags ...string) *Group {
	g.defaults.tags = append(g.defaults.tags, tags...)
	return g
}

// Permissions appends permission checkers shared by the group. Each
// operation's security requirement uses the scopes these checkers declare
// for that operation's method.
func (g *Group) Permissions(checkers ...PermissionChecker) *Group {
	g.defaults.permissions = append(g.defaults.permissions, checkers...)
	return g
}

// Deprecated marks all operations in this group as deprecated.
func (g *Group) Deprecated() *Group {
	g.defaults.deprecated = true
	return g
}

// Public marks all operations in this group as unauthenticated.
func (g *Group) Public() *Group {
	g.defaults.public = true
	return g
}

// Response adds a default application/json response. Operations may
// override it by registering the same status code.
func (g *Group) Response(statusCode int, body any) *Group {
	if g.defaults.responses == nil {
		g.defaults.responses = make(map[string]any)
	}
	g.defaults.responses[strconv.Itoa(statusCode)] = body
	return g
}

// Operation returns the OperationBuilder for method and path, applying
// the group defaults when the operation is created.
func (g *Group) Operation(method, path string) *OperationBuilder {
	n := len(g.spec.operations)
	b := g.spec.Operation(method, path)
	if len(g.spec.operations) == n {
		return b
	}

	b.tags = append(b.tags, g.defaults.tags...)
	b.permissions = append(b.permissions, g.defaults.permissions...)
	b.deprecated = g.defaults.deprecated
	b.public = g.defaults.public
	for key, body := range g.defaults.responses {
		b.responses[key] = body
	}
	return b
}
