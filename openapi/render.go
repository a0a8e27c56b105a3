package openapi

import (
	"bytes"
	"fmt"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is a document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses "json" or "yaml" (also "yml"). The empty string
// selects JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// JSON encodes the document as indented JSON. Schema properties keep
// their declaration order.
func (d *Document) JSON() ([]byte, error) {
	data, err := gojson.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML encodes the document as YAML with two-space indentation. Schema
// properties keep their declaration order.
func (d *Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Render encodes the document in the given format.
func (d *Document) Render(format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return d.JSON()
	case FormatYAML:
		return d.YAML()
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
