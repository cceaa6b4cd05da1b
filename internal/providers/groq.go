package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	GroqName         = "groq"
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	GroqDefaultModel = "llama-3.3-70b-versatile"
)

// GroqConfig holds configuration for the Groq client.
type GroqConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// GroqClient implements LLMClient against Groq's OpenAI-compatible API.
type GroqClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// NewGroqClient creates a new Groq client.
func NewGroqClient(cfg GroqConfig) *GroqClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = GroqDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &GroqClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the client identifier.
func (c *GroqClient) Name() string {
	return GroqName
}

// Chat sends a single chat completion request.
func (c *GroqClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	gReq := groqRequest{
		Model:       model,
		Messages:    make([]groqMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		gReq.Messages = append(gReq.Messages, groqMessage{Role: m.Role, Content: m.Content})
	}

	if req.ResponseFormat != nil {
		gReq.ResponseFormat = adaptedGroqResponseFormat(req.ResponseFormat)
	}

	gResp, err := c.doRequest(ctx, "/chat/completions", &gReq)
	if err != nil {
		return nil, err
	}

	content := gResp.Choices[0].Message.Content
	result := &ChatResult{
		Content:          content,
		PromptTokens:     gResp.Usage.PromptTokens,
		CompletionTokens: gResp.Usage.CompletionTokens,
		TotalTokens:      gResp.Usage.TotalTokens,
		Provider:         GroqName,
		ModelUsed:        gResp.Model,
		RequestID:        requestID,
		TotalTime:        time.Since(start),
	}

	// Best-effort parse; callers validate against their schema.
	if req.ResponseFormat != nil {
		if parsed, err := ParseStructuredJSON(content); err == nil {
			result.ParsedJSON = parsed
		}
	}

	return result, nil
}

// adaptedGroqResponseFormat converts the canonical response format to Groq's
// wire shape. Groq accepts the OpenAI json_schema wrapper on supported models.
func adaptedGroqResponseFormat(rf *ResponseFormat) *groqResponseFormat {
	name := rf.Name
	if name == "" {
		name = "extraction"
	}
	return &groqResponseFormat{
		Type: "json_schema",
		JSONSchema: &groqJSONSchema{
			Name:   name,
			Schema: rf.JSONSchema,
		},
	}
}
