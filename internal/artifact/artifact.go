// Package artifact defines the typed payloads exchanged between a
// remote CLI and the canvas host.
//
// An Artifact is a tagged union: a type tag, an optional title, and a
// type-specific JSON payload. The tag set is open — unknown tags are
// legal and degrade to a fallback rendering rather than failing hard.
// Typed payload structs with Decode helpers cover the registered tags.
package artifact

import (
	"encoding/json"
	"errors"
)

// Type is the artifact content type tag. The enumeration is open:
// values outside the registered constants are carried through untouched.
type Type string

// Registered artifact types.
const (
	TypeChart    Type = "chart"
	TypeTable    Type = "table"
	TypeFile     Type = "file"
	TypeDiff     Type = "diff"
	TypeWeb      Type = "web"
	TypeMarkdown Type = "markdown"
	TypeJSON     Type = "json"
	TypeImage    Type = "image"
	TypeCSV      Type = "csv"
	TypeXLSX     Type = "xlsx"
)

// ErrNoPayload indicates an artifact carries no data payload where one
// is required.
var ErrNoPayload = errors.New("artifact has no payload")

// Artifact is a typed, titled payload to be rendered and displayed.
//
// Data is kept raw until a renderer narrows it to its concrete payload
// shape; this is what lets unknown types flow through the system.
type Artifact struct {
	Type  Type            `json:"type"`
	Title string          `json:"title,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`

	// Path carries the flat open-action shape {"path": ...} some
	// clients send with no type tag or data envelope. Typed payloads
	// keep their path inside Data.
	Path string `json:"path,omitempty"`
}

// DisplayTitle returns the title, falling back to the type tag when the
// caller supplied none.
func (a *Artifact) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	return string(a.Type)
}

// decode unmarshals the raw payload into v. Returns ErrNoPayload for an
// absent payload so callers can distinguish "missing" from "malformed".
func (a *Artifact) decode(v any) error {
	if len(a.Data) == 0 {
		return ErrNoPayload
	}
	return json.Unmarshal(a.Data, v)
}

// Extension returns the persistence file extension for an artifact
// type, without the leading dot. Unregistered types default to "txt".
func Extension(t Type) string {
	switch t {
	case TypeChart, TypeTable, TypeDiff, TypeWeb:
		return "html"
	case TypeFile:
		return "txt"
	case TypeMarkdown:
		return "md"
	case TypeJSON:
		return "json"
	case TypeImage:
		return "png"
	case TypeCSV:
		return "csv"
	case TypeXLSX:
		return "xlsx"
	default:
		return "txt"
	}
}
