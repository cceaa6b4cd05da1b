package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackzampolin/skim/internal/providers"
	"github.com/jackzampolin/skim/internal/schema"
)

func TestInvokerExtract(t *testing.T) {
	record := buildRecord(t, schema.DefaultSchemaJSON)

	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"vendor": "Acme", "items": [{"name": "widget", "price": 9.99}]}`)

	inv := &Invoker{Client: mock}
	inst, err := inv.Extract(context.Background(), "Invoice from Acme. Widget: $9.99", record)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"vendor":"Acme","items":[{"name":"widget","price":9.99}]}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("expected 1 request, got %d", mock.RequestCount())
	}
}

func TestInvokerExtractNoFields(t *testing.T) {
	mock := providers.NewMockClient()
	inv := &Invoker{Client: mock}

	_, err := inv.Extract(context.Background(), "some text", &schema.Record{Name: "Ext"})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
	if mock.RequestCount() != 0 {
		t.Fatalf("expected no network activity, got %d requests", mock.RequestCount())
	}
}

func TestInvokerExtractNoText(t *testing.T) {
	record := buildRecord(t, `{"vendor": "str"}`)
	mock := providers.NewMockClient()
	inv := &Invoker{Client: mock}

	_, err := inv.Extract(context.Background(), "   \n\t ", record)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if mock.RequestCount() != 0 {
		t.Fatalf("expected no network activity, got %d requests", mock.RequestCount())
	}
}

func TestInvokerExtractTransportError(t *testing.T) {
	record := buildRecord(t, `{"vendor": "str"}`)
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	inv := &Invoker{Client: mock}
	_, err := inv.Extract(context.Background(), "some text", record)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("transport failure should not classify as validation")
	}
}

func TestInvokerExtractValidationError(t *testing.T) {
	record := buildRecord(t, `{"vendor": "str"}`)

	cases := []struct {
		name string
		text string
	}{
		{"not json", "the model rambled instead of returning JSON"},
		{"wrong type", `{"vendor": 42}`},
		{"extra property", `{"vendor": "Acme", "invented": true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ResponseText = tc.text

			inv := &Invoker{Client: mock}
			_, err := inv.Extract(context.Background(), "some text", record)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if errors.Is(err, ErrTransport) {
				t.Fatal("validation failure should not classify as transport")
			}
		})
	}
}

func TestInvokerExtractPromptContainsText(t *testing.T) {
	record := buildRecord(t, `{"vendor": "str"}`)
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"vendor": "Acme"}`)

	inv := &Invoker{Client: mock, Model: "llama-3.3-70b-versatile"}
	if _, err := inv.Extract(context.Background(), "UNIQUE-DOC-MARKER", record); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	req := mock.LastRequest()
	if req == nil {
		t.Fatal("expected a recorded request")
	}
	if req.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected model pass-through, got %q", req.Model)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
		t.Errorf("expected json_schema response format, got %+v", req.ResponseFormat)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if !strings.Contains(req.Messages[0].Content, "UNIQUE-DOC-MARKER") {
		t.Error("expected document text embedded in system prompt")
	}
}
