package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/skim/internal/schema"
)

// Instance is a materialized extraction result bound to a record definition.
// Marshaling an Instance emits keys in the record's declaration order, with
// null for every field the model did not produce. Marshaling is deterministic:
// the same instance always serializes to the same bytes.
type Instance struct {
	record *schema.Record
	values []any // aligned to record.Fields
}

// Record returns the record definition this instance is bound to.
func (in *Instance) Record() *schema.Record {
	return in.record
}

// Value returns the bound value for a declared field name. Missing fields
// return nil, true; undeclared names return nil, false.
func (in *Instance) Value(name string) (any, bool) {
	for i, f := range in.record.Fields {
		if f.Name == name {
			return in.values[i], true
		}
	}
	return nil, false
}

// Bind checks raw model output against the record's field types and
// materializes it. Fields absent from the output bind to nil. Any type
// mismatch fails with ErrValidation.
func Bind(record *schema.Record, raw json.RawMessage) (*Instance, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return bindDoc(record, doc)
}

func bindDoc(record *schema.Record, doc map[string]any) (*Instance, error) {
	inst := &Instance{
		record: record,
		values: make([]any, len(record.Fields)),
	}
	for i, f := range record.Fields {
		v, ok := doc[f.Name]
		if !ok || v == nil {
			continue
		}
		bound, err := bindValue(f, v)
		if err != nil {
			return nil, err
		}
		inst.values[i] = bound
	}
	return inst, nil
}

func bindValue(f schema.Field, v any) (any, error) {
	if f.Nested != nil {
		if f.Repeated {
			arr, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: field %s: expected array, got %T", ErrValidation, f.Name, v)
			}
			items := make([]*Instance, 0, len(arr))
			for idx, elem := range arr {
				obj, ok := elem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: field %s[%d]: expected object, got %T", ErrValidation, f.Name, idx, elem)
				}
				item, err := bindDoc(f.Nested, obj)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			return items, nil
		}

		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: field %s: expected object, got %T", ErrValidation, f.Name, v)
		}
		return bindDoc(f.Nested, obj)
	}

	switch f.Scalar {
	case schema.KindInt:
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: field %s: expected integer, got %T", ErrValidation, f.Name, v)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: expected integer, got %s", ErrValidation, f.Name, n.String())
		}
		return i, nil
	case schema.KindFloat:
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: field %s: expected number, got %T", ErrValidation, f.Name, v)
		}
		fv, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: expected number, got %s", ErrValidation, f.Name, n.String())
		}
		return fv, nil
	case schema.KindList:
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: field %s: expected array, got %T", ErrValidation, f.Name, v)
		}
		return arr, nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %s: expected string, got %T", ErrValidation, f.Name, v)
		}
		return s, nil
	}
}

// MarshalJSON serializes the instance with keys in declaration order.
func (in *Instance) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range in.record.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field name %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeValue(&buf, in.values[i]); err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", f.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Instance:
		b, err := val.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(b)
	case []*Instance:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
