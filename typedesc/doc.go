// Package typedesc describes declared types as a small closed union of
// shapes: primitives, arrays, records and an unknown fallback.
//
// Descriptors are built once, either from Go reflection or from YAML
// declarations, and then handed to the OpenAPI schema resolver, which
// never inspects Go types itself.
//
// # Reflection
//
// FromType, FromValue, FromFunc and FromMethod walk Go types following
// encoding/json conventions:
//
//	type Project struct {
//	    ID   string   `json:"id"`
//	    Tags []string `json:"tags"`
//	    Slug *string  `json:"slug,omitempty"`
//	}
//
//	d := typedesc.FromValue(Project{})
//	// Record{Name: "Project", Fields: [id: string, tags: []string, slug?: string]}
//
// FromMethod describes the declared return type of a method, which is how
// serializers document their output:
//
//	func (ProjectSerializer) Serialize(p *models.Project) Project { ... }
//
//	d, err := typedesc.FromMethod(ProjectSerializer{}, "Serialize")
//
// # Declarations
//
// ParseDeclarations reads named types from a YAML mapping. Key order is
// kept, so record fields appear in the order they are written:
//
//	Project:
//	  id: string
//	  tags: "[]string"
//	  owner: User
//	  slug: string?
//	User:
//	  id: uuid
package typedesc
