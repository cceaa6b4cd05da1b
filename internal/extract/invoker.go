package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackzampolin/skim/internal/providers"
	"github.com/jackzampolin/skim/internal/schema"
)

// extractionSystemPrompt constrains the model to the document text. Values
// never present in the text must come back as null, not guesses.
const extractionSystemPrompt = `You are a precise data extraction engine. You are given the full text of a document and a JSON schema describing the fields to extract.

Rules:
- Use only information that appears in the document text below.
- If a field's value is not present in the text, return null for that field. Never guess, infer, or fabricate values.
- Respond with a single JSON object conforming to the schema. No prose, no markdown.

Document text:
---
%s
---`

const extractionUserPrompt = `Extract the requested fields from the document text above.`

// Invoker runs a single extraction pass: one request, one validated result.
// It never retries; transport failures and invalid model output surface as
// ErrTransport and ErrValidation respectively.
type Invoker struct {
	Client      providers.LLMClient
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *slog.Logger
}

// Extract sends the document text and record schema to the model and binds
// the constrained output. Records with no fields short-circuit before any
// network activity.
func (inv *Invoker) Extract(ctx context.Context, text string, record *schema.Record) (*Instance, error) {
	if record == nil || len(record.Fields) == 0 {
		return nil, ErrNoFields
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	schemaDoc, err := record.JSONSchemaBytes()
	if err != nil {
		return nil, err
	}

	logger := inv.Logger
	if logger == nil {
		logger = slog.Default()
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: fmt.Sprintf(extractionSystemPrompt, text)},
			{Role: "user", Content: extractionUserPrompt},
		},
		Model:       inv.Model,
		Temperature: inv.Temperature,
		MaxTokens:   inv.MaxTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			Name:       record.Name,
			JSONSchema: schemaDoc,
		},
	}

	start := time.Now()
	result, err := inv.Client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	logger.Debug("extraction call completed",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"request_id", result.RequestID,
		"total_tokens", result.TotalTokens,
		"duration", time.Since(start))

	parsed := result.ParsedJSON
	if parsed == nil {
		parsed, err = providers.ParseStructuredJSON(result.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	if err := providers.ValidateStructuredJSON(schemaDoc, parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return Bind(record, parsed)
}
