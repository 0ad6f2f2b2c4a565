package config

import (
	"os"
	"sort"
)

// APIKind selects the wire protocol used to reach a provider.
type APIKind string

const (
	KindOpenAI    APIKind = "openai"
	KindAnthropic APIKind = "anthropic"
)

// Provider describes a supported model gateway.
type Provider struct {
	Name         string
	Kind         APIKind
	DefaultModel string
	BaseURL      string
	KeyEnv       []string // checked in order when api_key is unset
	Local        bool     // no credential required
}

var providers = map[string]Provider{
	"gemini": {
		Name:         "gemini",
		Kind:         KindOpenAI,
		DefaultModel: "gemini-1.5-flash",
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
		KeyEnv:       []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	},
	"openai": {
		Name:         "openai",
		Kind:         KindOpenAI,
		DefaultModel: "gpt-4o-mini",
		KeyEnv:       []string{"OPENAI_API_KEY"},
	},
	"anthropic": {
		Name:         "anthropic",
		Kind:         KindAnthropic,
		DefaultModel: "claude-3-5-sonnet-20241022",
		KeyEnv:       []string{"ANTHROPIC_API_KEY"},
	},
	"deepseek": {
		Name:         "deepseek",
		Kind:         KindOpenAI,
		DefaultModel: "deepseek-chat",
		BaseURL:      "https://api.deepseek.com/v1",
		KeyEnv:       []string{"DEEPSEEK_API_KEY"},
	},
	"groq": {
		Name:         "groq",
		Kind:         KindOpenAI,
		DefaultModel: "llama-3.1-70b-versatile",
		BaseURL:      "https://api.groq.com/openai/v1",
		KeyEnv:       []string{"GROQ_API_KEY"},
	},
	"ollama": {
		Name:         "ollama",
		Kind:         KindOpenAI,
		DefaultModel: "llama3.1",
		BaseURL:      "http://localhost:11434/v1",
		KeyEnv:       []string{"OLLAMA_API_KEY"},
		Local:        true,
	},
	"lmstudio": {
		Name:         "lmstudio",
		Kind:         KindOpenAI,
		DefaultModel: "local-model",
		BaseURL:      "http://localhost:1234/v1",
		KeyEnv:       []string{"LMSTUDIO_API_KEY"},
		Local:        true,
	},
}

// LookupProvider returns the provider registered under name.
func LookupProvider(name string) (Provider, bool) {
	p, ok := providers[name]
	return p, ok
}

// ProviderNames lists supported providers alphabetically.
func ProviderNames() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Provider) credentialFromEnv() string {
	for _, key := range p.KeyEnv {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
