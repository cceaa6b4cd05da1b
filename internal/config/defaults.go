package config

import (
	"github.com/jackzampolin/skim/internal/providers"
	"github.com/jackzampolin/skim/internal/schema"
)

// DefaultConfig returns configuration with sensible defaults. Groq is the
// default backend; requests without a field schema fall back to the invoice
// shape in schema.DefaultSchemaJSON.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: 8000,
		},
		LLMProviders: map[string]LLMProviderCfg{
			"groq": {
				Type:    providers.GroqName,
				Model:   providers.GroqDefaultModel,
				APIKey:  "${GROQ_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    providers.OpenAIName,
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "groq",
			Temperature: 0,
			Schema:      schema.DefaultSchemaJSON,
		},
	}
}
