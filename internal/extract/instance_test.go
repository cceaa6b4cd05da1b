package extract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackzampolin/skim/internal/schema"
)

func buildRecord(t *testing.T, description string) *schema.Record {
	t.Helper()
	desc, err := schema.ParseDescriptionString(description)
	if err != nil {
		t.Fatalf("ParseDescriptionString failed: %v", err)
	}
	record, err := schema.Build(desc, "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return record
}

func TestBindPreservesDeclarationOrder(t *testing.T) {
	record := buildRecord(t, `{"zebra": "str", "apple": "int", "mango": "float"}`)

	// Model output key order differs from declaration order.
	inst, err := Bind(record, json.RawMessage(`{"mango": 1.5, "apple": 3, "zebra": "z"}`))
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	out, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"zebra":"z","apple":3,"mango":1.5}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestBindMissingFieldsNull(t *testing.T) {
	record := buildRecord(t, `{"vendor": "str", "total": "float"}`)

	inst, err := Bind(record, json.RawMessage(`{"vendor": "Acme"}`))
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	out, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"vendor":"Acme","total":null}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}

	if inst.Record() != record {
		t.Error("expected instance bound to its record")
	}
	if v, ok := inst.Value("total"); !ok || v != nil {
		t.Errorf("expected nil value for absent field, got %v (ok=%v)", v, ok)
	}
	if _, ok := inst.Value("undeclared"); ok {
		t.Error("expected no value for undeclared field")
	}
}

func TestBindNestedAndRepeated(t *testing.T) {
	record := buildRecord(t, schema.DefaultSchemaJSON)

	inst, err := Bind(record, json.RawMessage(`{
		"vendor": "Acme",
		"items": [{"name": "widget", "price": 9.99}, {"price": 1.0, "name": "bolt"}]
	}`))
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	out, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"vendor":"Acme","items":[{"name":"widget","price":9.99},{"name":"bolt","price":1}]}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestBindEmptyRepeated(t *testing.T) {
	record := buildRecord(t, schema.DefaultSchemaJSON)

	inst, err := Bind(record, json.RawMessage(`{"vendor": null, "items": []}`))
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	out, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"vendor":null,"items":[]}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestBindTypeMismatch(t *testing.T) {
	record := buildRecord(t, `{"count": "int"}`)

	cases := []string{
		`{"count": "three"}`,
		`{"count": 1.5}`,
		`{"count": [1]}`,
	}
	for _, raw := range cases {
		if _, err := Bind(record, json.RawMessage(raw)); !errors.Is(err, ErrValidation) {
			t.Errorf("Bind(%s): expected ErrValidation, got %v", raw, err)
		}
	}
}

func TestBindIgnoresUndeclaredKeys(t *testing.T) {
	record := buildRecord(t, `{"vendor": "str"}`)

	inst, err := Bind(record, json.RawMessage(`{"vendor": "Acme", "surprise": 42}`))
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	out, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"vendor":"Acme"}` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestMarshalIdempotent(t *testing.T) {
	record := buildRecord(t, schema.DefaultSchemaJSON)
	inst, err := Bind(record, json.RawMessage(`{"vendor": "Acme", "items": [{"name": "a", "price": 2.5}]}`))
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	first, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("first Marshal failed: %v", err)
	}
	second, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("second Marshal failed: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("marshal not deterministic: %s vs %s", first, second)
	}
}
