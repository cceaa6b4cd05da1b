// Package schema turns a user-declared field description into a typed record
// definition that can constrain and validate LLM output.
package schema

import (
	"strings"
)

// DefaultRootName is the record name used when the caller does not provide one.
const DefaultRootName = "Ext"

// DefaultSchemaJSON is the schema description applied when a request omits one.
const DefaultSchemaJSON = `{"vendor": "str", "items": [{"name": "str", "price": "float"}]}`

// Kind identifies a scalar field type.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindList
)

// String returns the type token for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	default:
		return "str"
	}
}

// Resolve maps a primitive type token to a Kind. Tokens are matched
// case-insensitively; anything unrecognized (including "str") resolves to
// KindString. Unknown tokens are never an error.
func Resolve(token string) Kind {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "int":
		return KindInt
	case "float":
		return KindFloat
	case "list":
		return KindList
	default:
		return KindString
	}
}

// Field is one declared field of a Record. A field is a scalar when Nested is
// nil, a nested record when Nested is set, and a list of nested records when
// Repeated is also set. Every field is optional: source documents routinely
// omit requested data, and a required field would fail the whole extraction.
type Field struct {
	Name        string
	Description string
	Scalar      Kind
	Nested      *Record
	Repeated    bool
}

// Record is a named, ordered collection of fields. Field order follows the
// declaration order of the originating description and drives the key order of
// materialized output.
type Record struct {
	Name   string
	Fields []Field
}

// Field returns the field with the given name, if declared.
func (r *Record) Field(name string) (*Field, bool) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i], true
		}
	}
	return nil, false
}

// FieldNames returns the declared field names in order.
func (r *Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}
