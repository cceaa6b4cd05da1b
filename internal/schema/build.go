package schema

import (
	"fmt"
)

// Build converts a schema description into a Record. Nested type names are
// derived from the ancestor chain (parent "Ext" + field "items" -> "Ext_items",
// list elements get an "_i" suffix) so sibling branches never collide. Every
// field is optional and carries a short description used as an extraction hint
// by the LLM, not as a validation constraint.
func Build(desc Description, name string) (*Record, error) {
	if name == "" {
		name = DefaultRootName
	}

	rec := &Record{Name: name, Fields: make([]Field, 0, len(desc))}
	seen := make(map[string]struct{}, len(desc))

	for _, e := range desc {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: field name must not be empty", ErrMalformedDescription)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrMalformedDescription, e.Name)
		}
		seen[e.Name] = struct{}{}

		f := Field{Name: e.Name, Description: e.Description}
		switch e.Kind {
		case EntryObject:
			nested, err := Build(e.Nested, name+"_"+e.Name)
			if err != nil {
				return nil, err
			}
			f.Nested = nested
			if f.Description == "" {
				f.Description = "Ext " + e.Name
			}
		case EntryList:
			nested, err := Build(e.Nested, name+"_"+e.Name+"_i")
			if err != nil {
				return nil, err
			}
			f.Nested = nested
			f.Repeated = true
			if f.Description == "" {
				f.Description = "Ext list " + e.Name
			}
		default:
			f.Scalar = Resolve(e.Token)
			if f.Description == "" {
				f.Description = "Ext " + e.Name
			}
		}
		rec.Fields = append(rec.Fields, f)
	}

	return rec, nil
}
