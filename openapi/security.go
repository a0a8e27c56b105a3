package openapi

import (
	"slices"
	"strings"
)

// DefaultTokenAuthName is the security scheme name under which token
// authentication is registered.
const DefaultTokenAuthName = "auth_token"

// ScopeMap maps an HTTP method to the authorization scopes it requires.
type ScopeMap map[string][]string

// PermissionChecker is anything that declares the scopes required per
// HTTP method. Views typically carry an ordered list of them.
type PermissionChecker interface {
	ScopeMap() ScopeMap
}

// StaticPermission is a PermissionChecker backed by a fixed ScopeMap.
type StaticPermission ScopeMap

// ScopeMap implements PermissionChecker.
func (p StaticPermission) ScopeMap() ScopeMap {
	return ScopeMap(p)
}

// TokenAuth documents bearer-token authentication. Its requirements list
// the union of scopes demanded by an operation's permission checkers.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-scheme-object
// See: https://spec.openapis.org/oas/v3.1.0#security-requirement-object
type TokenAuth struct {
	name string
}

// NewTokenAuth creates a token authentication scheme registered under
// name. An empty name selects DefaultTokenAuthName.
func NewTokenAuth(name string) *TokenAuth {
	if name == "" {
		name = DefaultTokenAuthName
	}
	return &TokenAuth{name: name}
}

// Name returns the security scheme name.
func (a *TokenAuth) Name() string {
	return a.name
}

// SecurityDefinition returns the scheme descriptor: HTTP bearer.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-scheme-object (http)
func (a *TokenAuth) SecurityDefinition() *SecurityScheme {
	return &SecurityScheme{
		Type:   "http",
		Scheme: "bearer",
	}
}

// SecurityRequirement returns {name: scopes}, where scopes is the
// duplicate-free union of the scopes each checker declares for method.
// Methods match case-insensitively. Scopes are sorted; the requirement
// has no inherent order.
func (a *TokenAuth) SecurityRequirement(method string, checkers ...PermissionChecker) SecurityRequirement {
	method = strings.ToUpper(method)

	seen := make(map[string]struct{})
	scopes := []string{}

	for _, checker := range checkers {
		if checker == nil {
			continue
		}
		for m, declared := range checker.ScopeMap() {
			if strings.ToUpper(m) != method {
				continue
			}
			for _, scope := range declared {
				if _, dup := seen[scope]; dup {
					continue
				}
				seen[scope] = struct{}{}
				scopes = append(scopes, scope)
			}
		}
	}

	slices.Sort(scopes)
	return SecurityRequirement{a.name: scopes}
}
