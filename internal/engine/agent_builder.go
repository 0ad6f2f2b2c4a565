package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ChamsBouzaiene/reviewer/internal/prompts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AgentBuilder helps construct an Agent with a fluent API.
type AgentBuilder struct {
	config      AgentConfig
	llm         LLMClient
	tools       *ToolRegistry
	hooks       Hooks
	logger      *zerolog.Logger
	prompt      *prompts.Prompt
	registry    *prompts.PromptRegistry
	customRules string
}

// NewAgentBuilder creates a new agent builder with default configuration.
func NewAgentBuilder() *AgentBuilder {
	return &AgentBuilder{
		config:   DefaultAgentConfig(),
		registry: prompts.DefaultRegistry(),
	}
}

// WithModel sets the model name.
func (b *AgentBuilder) WithModel(model string) *AgentBuilder {
	b.config.Model = model
	return b
}

// WithLLM sets the gateway client.
func (b *AgentBuilder) WithLLM(llm LLMClient) *AgentBuilder {
	b.llm = llm
	return b
}

// WithMaxSteps sets the maximum number of model round-trips.
func (b *AgentBuilder) WithMaxSteps(maxSteps int) *AgentBuilder {
	b.config.MaxSteps = maxSteps
	return b
}

// WithMaxOutputTokens sets the maximum output tokens for model responses.
// Set to 0 to use the default.
func (b *AgentBuilder) WithMaxOutputTokens(tokens int) *AgentBuilder {
	b.config.MaxOutputTokens = tokens
	return b
}

// WithTemperature sets the sampling temperature (0 = provider default).
func (b *AgentBuilder) WithTemperature(t float32) *AgentBuilder {
	b.config.Temperature = t
	return b
}

// WithCallTimeout bounds each gateway call. Zero disables the limit.
func (b *AgentBuilder) WithCallTimeout(d time.Duration) *AgentBuilder {
	b.config.CallTimeout = d
	return b
}

// WithRetryConfig sets the retry configuration.
func (b *AgentBuilder) WithRetryConfig(retryConfig *RetryConfig) *AgentBuilder {
	b.config.RetryConfig = retryConfig
	return b
}

// WithToolRegistry sets the tools the model may call.
func (b *AgentBuilder) WithToolRegistry(reg *ToolRegistry) *AgentBuilder {
	b.tools = reg
	return b
}

// WithPromptRegistry overrides the prompt registry (DefaultRegistry otherwise).
func (b *AgentBuilder) WithPromptRegistry(r *prompts.PromptRegistry) *AgentBuilder {
	b.registry = r
	return b
}

// WithPrompt sets the prompt ID and version.
func (b *AgentBuilder) WithPrompt(id string, version prompts.PromptVersion) (*AgentBuilder, error) {
	prompt, err := b.registry.Get(id, version)
	if err != nil {
		return nil, err
	}
	b.prompt = prompt
	b.config.PromptID = id
	b.config.PromptVersion = version
	return b, nil
}

// WithHooks sets custom hooks, replacing the default logger hook.
func (b *AgentBuilder) WithHooks(hooks Hooks) *AgentBuilder {
	b.hooks = hooks
	return b
}

// WithLogger sets the logger used for the default hook and build-time logging.
func (b *AgentBuilder) WithLogger(l zerolog.Logger) *AgentBuilder {
	b.logger = &l
	return b
}

// WithCustomRules sets project rules appended to the system instruction.
func (b *AgentBuilder) WithCustomRules(rules string) *AgentBuilder {
	b.customRules = rules
	return b
}

// Build constructs the Agent instance.
func (b *AgentBuilder) Build(ctx context.Context) (*Agent, error) {
	if b.llm == nil {
		return nil, fmt.Errorf("LLM client not configured: use WithLLM")
	}
	if b.tools == nil {
		return nil, fmt.Errorf("tools not configured: use WithToolRegistry")
	}
	if b.config.MaxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be positive, got %d", b.config.MaxSteps)
	}
	if b.config.MaxOutputTokens == 0 {
		b.config.MaxOutputTokens = DefaultMaxOutputTokens
	}

	logger := log.Logger
	if b.logger != nil {
		logger = *b.logger
	}

	if b.prompt == nil {
		prompt, err := b.registry.GetLatest(b.config.PromptID)
		if err != nil {
			return nil, err
		}
		b.prompt = prompt
	}

	pb := prompts.NewPromptBuilderFrom(b.prompt)
	if b.customRules != "" {
		pb.AddFragment(prompts.RulesSection(b.customRules))
		logger.Info().Int("bytes", len(b.customRules)).Msg("injected project rules")
	}
	instruction, err := pb.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build system instruction: %w", err)
	}

	if b.hooks == nil {
		b.hooks = Hooks{LoggerHook{L: logger}}
	}

	logInitialConfiguration(logger, b.prompt, instruction, b.tools, b.config)

	return &Agent{
		llm:               b.llm,
		tools:             b.tools,
		config:            b.config,
		hooks:             b.hooks,
		systemInstruction: instruction,
	}, nil
}

// logInitialConfiguration logs prompt ID/version, estimated prompt size, and tool tags.
func logInitialConfiguration(logger zerolog.Logger, prompt *prompts.Prompt, instruction string, tools *ToolRegistry, cfg AgentConfig) {
	categories := map[string]bool{}
	tags := map[string]bool{}
	toolTokens := 0
	for _, name := range tools.Names() {
		t, _ := tools.Lookup(name)
		categories[t.GetCategory()] = true
		for _, tag := range t.Metadata.Tags {
			tags[tag] = true
		}
		toolTokens += EstimateTokens(t.Name) + EstimateTokens(t.Description) + EstimateTokens(t.SchemaJSON) + 10
	}

	logger.Info().
		Str("prompt", fmt.Sprintf("%s@%s", prompt.ID, prompt.Version)).
		Str("model", cfg.Model).
		Int("max_steps", cfg.MaxSteps).
		Dur("call_timeout", cfg.CallTimeout).
		Int("est_tokens_system", EstimateTokens(instruction)).
		Int("est_tokens_tools", toolTokens).
		Strs("tools", tools.Names()).
		Strs("categories", sortedKeys(categories)).
		Strs("tags", sortedKeys(tags)).
		Msg("agent configured")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
