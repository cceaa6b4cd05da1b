package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGroqClientChat(t *testing.T) {
	var gotAuth string
	var gotBody groqRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"id": "chatcmpl-123",
			"model": "llama-3.3-70b-versatile",
			"choices": [{"message": {"role": "assistant", "content": "{\"vendor\": \"Acme\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "extract fields"},
			{Role: "user", Content: "invoice text"},
		},
		ResponseFormat: &ResponseFormat{
			Type:       "json_schema",
			Name:       "Ext",
			JSONSchema: json.RawMessage(`{"type": "object"}`),
		},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != GroqDefaultModel {
		t.Errorf("expected default model %s, got %s", GroqDefaultModel, gotBody.Model)
	}
	if gotBody.ResponseFormat == nil || gotBody.ResponseFormat.Type != "json_schema" {
		t.Errorf("expected json_schema response format, got %+v", gotBody.ResponseFormat)
	}
	if gotBody.ResponseFormat.JSONSchema.Name != "Ext" {
		t.Errorf("expected schema name Ext, got %q", gotBody.ResponseFormat.JSONSchema.Name)
	}
	if len(gotBody.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(gotBody.Messages))
	}

	if result.Content != `{"vendor": "Acme"}` {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if result.ParsedJSON == nil {
		t.Error("expected best-effort parsed JSON")
	}
	if result.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", result.TotalTokens)
	}
	if result.Provider != GroqName {
		t.Errorf("expected provider %s, got %s", GroqName, result.Provider)
	}
}

func TestGroqClientChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		if _, err := w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`)); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestGroqClientChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"error": {"message": "model decommissioned", "type": "invalid_request_error"}}`)); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for API error payload")
	}
	if !strings.Contains(err.Error(), "model decommissioned") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestGroqClientChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"id": "x", "model": "m", "choices": []}`)); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
