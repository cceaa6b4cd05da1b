package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDescription is returned when a schema description cannot be
// parsed as a JSON object.
var ErrMalformedDescription = errors.New("malformed schema description")

// EntryKind discriminates the value of a description entry.
type EntryKind int

const (
	// EntryScalar declares a primitive field via a type token.
	EntryScalar EntryKind = iota
	// EntryObject declares a nested record field.
	EntryObject
	// EntryList declares a list-of-nested-record field.
	EntryList
)

// Entry is one field declaration in a Description.
type Entry struct {
	Name        string
	Kind        EntryKind
	Token       string      // type token for EntryScalar
	Nested      Description // nested description for EntryObject/EntryList
	Description string      // optional human note; Build generates one when empty
}

// Description is an ordered schema description. Go maps do not preserve key
// order, and field order must survive all the way into the materialized
// output, so descriptions are decoded from JSON with a token stream instead of
// a map.
type Description []Entry

// ParseDescriptionString parses a schema description from user-supplied JSON
// text. Single quotes are tolerated the way the request surfaces have always
// accepted them.
func ParseDescriptionString(s string) (Description, error) {
	return ParseDescription([]byte(strings.ReplaceAll(s, "'", `"`)))
}

// ParseDescription parses a schema description from JSON bytes, preserving key
// order and rejecting duplicate field names within a nesting level.
func ParseDescription(raw []byte) (Description, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrMalformedDescription)
	}

	desc, err := parseObject(dec)
	if err != nil {
		return nil, err
	}

	// Trailing garbage after the closing brace is malformed input.
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected trailing data", ErrMalformedDescription)
	}
	return desc, nil
}

// parseObject consumes entries up to and including the object's closing brace.
// The opening brace has already been consumed.
func parseObject(dec *json.Decoder) (Description, error) {
	desc := Description{}
	seen := make(map[string]struct{})

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
		}
		key, ok := keyTok.(string)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: field name must be a non-empty string", ErrMalformedDescription)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrMalformedDescription, key)
		}
		seen[key] = struct{}{}

		entry, err := parseValue(dec, key)
		if err != nil {
			return nil, err
		}
		desc = append(desc, entry)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}
	return desc, nil
}

func parseValue(dec *json.Decoder, key string) (Entry, error) {
	tok, err := dec.Token()
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			nested, err := parseObject(dec)
			if err != nil {
				return Entry{}, err
			}
			return Entry{Name: key, Kind: EntryObject, Nested: nested}, nil
		case '[':
			return parseArrayValue(dec, key)
		}
		return Entry{}, fmt.Errorf("%w: unexpected delimiter %q for field %q", ErrMalformedDescription, v.String(), key)
	case string:
		return Entry{Name: key, Kind: EntryScalar, Token: v}, nil
	case json.Number:
		// A bare number is an unrecognized token; the resolver's lenient
		// default turns it into a string field.
		return Entry{Name: key, Kind: EntryScalar, Token: v.String()}, nil
	case bool:
		return Entry{Name: key, Kind: EntryScalar, Token: fmt.Sprintf("%t", v)}, nil
	case nil:
		return Entry{Name: key, Kind: EntryScalar, Token: ""}, nil
	}
	return Entry{}, fmt.Errorf("%w: unsupported value for field %q", ErrMalformedDescription, key)
}

// parseArrayValue handles a sequence value. A sequence whose first element is
// an object declares a list-of-record field built from that element; extra
// elements are consumed and ignored. Anything else, including the empty
// sequence, falls back to a primitive token lookup which the resolver defaults
// to the string kind. The fallback is deliberate: an empty list value is not
// an error.
func parseArrayValue(dec *json.Decoder, key string) (Entry, error) {
	if !dec.More() {
		// Empty sequence: consume ']' and fall back to a scalar token.
		if _, err := dec.Token(); err != nil {
			return Entry{}, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
		}
		return Entry{Name: key, Kind: EntryScalar, Token: "[]"}, nil
	}

	first, err := dec.Token()
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}

	entry := Entry{Name: key, Kind: EntryScalar, Token: "[]"}
	if d, ok := first.(json.Delim); ok && d == '{' {
		nested, err := parseObject(dec)
		if err != nil {
			return Entry{}, err
		}
		entry = Entry{Name: key, Kind: EntryList, Nested: nested}
	} else if d, ok := first.(json.Delim); ok && d == '[' {
		if err := skipValue(dec); err != nil {
			return Entry{}, err
		}
	}

	// Drain any remaining elements and the closing bracket.
	for dec.More() {
		if err := skipElement(dec); err != nil {
			return Entry{}, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}
	return entry, nil
}

// skipElement consumes one array element of any shape.
func skipElement(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDescription, err)
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		return skipValue(dec)
	}
	return nil
}

// skipValue consumes the remainder of a compound value whose opening
// delimiter has already been read.
func skipValue(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDescription, err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
