package providers

import (
	"fmt"

	"github.com/ChamsBouzaiene/reviewer/internal/config"
	"github.com/ChamsBouzaiene/reviewer/internal/engine"
)

// NewLLMClient builds the gateway client for cfg. The caller injects the result
// into the agent; nothing here reads the environment.
func NewLLMClient(cfg config.Config) (engine.LLMClient, error) {
	p, ok := config.LookupProvider(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	switch p.Kind {
	case config.KindAnthropic:
		client, err := NewAnthropicClient(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return client, nil

	case config.KindOpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" && p.Local {
			// Local servers accept any key but the SDK sends the header regardless.
			apiKey = p.Name
		}
		client, err := NewOpenAIClient(apiKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", p.Name, err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("provider %s has unsupported API kind %q", p.Name, p.Kind)
	}
}
