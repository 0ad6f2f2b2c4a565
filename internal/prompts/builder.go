package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// PromptBuilder composes a prompt from a base, extra fragments and variables.
// Variables are substituted in the base prompt only; fragments are appended verbatim.
type PromptBuilder struct {
	basePrompt *Prompt
	fragments  []string
	variables  map[string]string
}

// NewPromptBuilder creates a builder based on a registered prompt.
func NewPromptBuilder(registry *PromptRegistry, id string, version PromptVersion) (*PromptBuilder, error) {
	basePrompt, err := registry.Get(id, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get base prompt: %w", err)
	}
	return NewPromptBuilderFrom(basePrompt), nil
}

// NewPromptBuilderFrom creates a builder from an already resolved prompt.
func NewPromptBuilderFrom(p *Prompt) *PromptBuilder {
	return &PromptBuilder{
		basePrompt: p,
		variables:  make(map[string]string),
	}
}

// AddFragment appends a fragment to the prompt.
func (b *PromptBuilder) AddFragment(text string) *PromptBuilder {
	b.fragments = append(b.fragments, text)
	return b
}

// SetVariable sets a variable for {{key}} substitution.
func (b *PromptBuilder) SetVariable(key, value string) *PromptBuilder {
	b.variables[key] = value
	return b
}

// Build substitutes variables and joins the fragments. A placeholder in the base
// prompt without a value is an error.
func (b *PromptBuilder) Build() (string, error) {
	var missing []string
	base := placeholderRe.ReplaceAllStringFunc(b.basePrompt.Content, func(ph string) string {
		key := placeholderRe.FindStringSubmatch(ph)[1]
		v, ok := b.variables[key]
		if !ok {
			missing = append(missing, key)
			return ph
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s: unresolved placeholders %v", b.basePrompt.ID, missing)
	}

	return strings.Join(append([]string{base}, b.fragments...), "\n\n"), nil
}
