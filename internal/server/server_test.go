package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackzampolin/skim/internal/pdf"
	"github.com/jackzampolin/skim/internal/providers"
)

// stubExtractor returns canned text instead of parsing a real PDF.
type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Text(data []byte) (string, error) {
	return s.text, s.err
}

func newTestServer(t *testing.T, extractor pdf.Extractor, mock *providers.MockClient) *Server {
	t.Helper()

	srv, err := New(Config{
		Host: "127.0.0.1",
		Port: 18000,
		PDF:  extractor,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Install the configured mock as the default provider.
	srv.Registry().Reload(providers.RegistryConfig{
		Default: "mock",
		LLM: map[string]providers.LLMConfig{
			"mock": {Type: providers.MockClientName, Enabled: true},
		},
	})
	srv.Registry().RegisterLLM("mock", mock)

	return srv
}

func multipartRequest(t *testing.T, filename string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write(fileData); err != nil {
		t.Fatalf("part write failed: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func errorKind(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Kind
}

func TestServerAddr(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{}, providers.NewMockClient())
	if srv.Addr() != "127.0.0.1:18000" {
		t.Fatalf("unexpected addr: %s", srv.Addr())
	}
	if srv.IsRunning() {
		t.Error("server should not report running before Start")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{}, providers.NewMockClient())

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{}, providers.NewMockClient())

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Server    string   `json:"server"`
		Providers []string `json:"providers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Server != "running" {
		t.Errorf("expected server running, got %s", resp.Server)
	}
	if len(resp.Providers) == 0 {
		t.Error("expected at least one provider")
	}
}

func TestExtractEndpoint(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"vendor": "Acme", "items": [{"name": "widget", "price": 9.99}]}`)
	srv := newTestServer(t, &stubExtractor{text: "Invoice from Acme"}, mock)

	req := multipartRequest(t, "invoice.pdf", []byte("%PDF-fake"), nil)
	rec := doRequest(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Default schema applies; keys come back in declaration order.
	want := `{"vendor":"Acme","items":[{"name":"widget","price":9.99}]}`
	if rec.Body.String() != want {
		t.Fatalf("expected %s, got %s", want, rec.Body.String())
	}
}

func TestExtractEndpointCustomSchema(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"total": 12.5}`)
	srv := newTestServer(t, &stubExtractor{text: "Total: 12.50"}, mock)

	// Single-quoted schema is tolerated.
	req := multipartRequest(t, "receipt.pdf", []byte("%PDF-fake"), map[string]string{
		"schema": `{'total': 'float'}`,
	})
	rec := doRequest(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `{"total":12.5}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestExtractEndpointNotPDF(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "text"}, providers.NewMockClient())

	req := multipartRequest(t, "notes.txt", []byte("hello"), nil)
	rec := doRequest(srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if kind := errorKind(t, rec.Body); kind != "bad_request" {
		t.Errorf("expected bad_request kind, got %s", kind)
	}
}

func TestExtractEndpointBadSchema(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "text"}, providers.NewMockClient())

	req := multipartRequest(t, "doc.pdf", []byte("%PDF-fake"), map[string]string{
		"schema": `{"vendor": `,
	})
	rec := doRequest(srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestExtractEndpointInvalidPDF(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{err: pdf.ErrInvalidPDF}, providers.NewMockClient())

	req := multipartRequest(t, "corrupt.pdf", []byte("garbage"), nil)
	rec := doRequest(srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExtractEndpointEmptyText(t *testing.T) {
	mock := providers.NewMockClient()
	srv := newTestServer(t, &stubExtractor{text: ""}, mock)

	req := multipartRequest(t, "scan.pdf", []byte("%PDF-fake"), nil)
	rec := doRequest(srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if kind := errorKind(t, rec.Body); kind != "no_text" {
		t.Errorf("expected no_text kind, got %s", kind)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("expected no model calls for empty text, got %d", mock.RequestCount())
	}
}

func TestExtractEndpointTransportFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	srv := newTestServer(t, &stubExtractor{text: "some text"}, mock)

	req := multipartRequest(t, "doc.pdf", []byte("%PDF-fake"), nil)
	rec := doRequest(srv, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if kind := errorKind(t, rec.Body); kind != "transport" {
		t.Errorf("expected transport kind, got %s", kind)
	}
}

func TestExtractEndpointValidationFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"vendor": 42}`)
	srv := newTestServer(t, &stubExtractor{text: "some text"}, mock)

	req := multipartRequest(t, "doc.pdf", []byte("%PDF-fake"), map[string]string{
		"schema": `{"vendor": "str"}`,
	})
	rec := doRequest(srv, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if kind := errorKind(t, rec.Body); kind != "validation" {
		t.Errorf("expected validation kind, got %s", kind)
	}
}

func TestExtractEndpointUnknownProvider(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "some text"}, providers.NewMockClient())

	req := multipartRequest(t, "doc.pdf", []byte("%PDF-fake"), map[string]string{
		"provider": "no-such-provider",
	})
	rec := doRequest(srv, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}
