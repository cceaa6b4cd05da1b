package providers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// LLMConfig describes one configured LLM backend.
type LLMConfig struct {
	Type           string // "groq", "openai", "mock"
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	Enabled        bool
}

// RegistryConfig is the provider portion of the application config.
type RegistryConfig struct {
	Default string
	LLM     map[string]LLMConfig
}

// Registry holds references to LLM clients. It supports config-driven
// instantiation, hot reload, and thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	llmClients map[string]LLMClient
	defaultLLM string
	logger     *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// GetLLM returns the LLM client with the given name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// DefaultLLM returns the configured default LLM client.
func (r *Registry) DefaultLLM() (LLMClient, error) {
	r.mu.RLock()
	name := r.defaultLLM
	r.mu.RUnlock()
	if name == "" {
		return nil, fmt.Errorf("no default LLM provider configured")
	}
	return r.GetLLM(name)
}

// Names returns the registered client names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}

// Reload rebuilds all clients from config. Existing clients are replaced;
// disabled or unknown entries are dropped.
func (r *Registry) Reload(cfg RegistryConfig) {
	clients := make(map[string]LLMClient, len(cfg.LLM))
	for name, lc := range cfg.LLM {
		if !lc.Enabled {
			continue
		}
		client, err := buildLLMClient(lc)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping LLM provider", "name", name, "error", err)
			}
			continue
		}
		clients[name] = client
	}

	r.mu.Lock()
	r.llmClients = clients
	r.defaultLLM = cfg.Default
	logger := r.logger
	r.mu.Unlock()

	if logger != nil {
		logger.Info("provider registry reloaded", "llm_clients", len(clients), "default", cfg.Default)
	}
}

func buildLLMClient(lc LLMConfig) (LLMClient, error) {
	timeout := time.Duration(lc.TimeoutSeconds) * time.Second
	switch lc.Type {
	case GroqName:
		return NewGroqClient(GroqConfig{
			APIKey:       lc.APIKey,
			BaseURL:      lc.BaseURL,
			DefaultModel: lc.Model,
			Timeout:      timeout,
		}), nil
	case OpenAIName:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       lc.APIKey,
			BaseURL:      lc.BaseURL,
			DefaultModel: lc.Model,
			Timeout:      timeout,
		}), nil
	case MockClientName:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", lc.Type)
	}
}
