package prompts

// PromptVersion represents a version identifier for prompts.
type PromptVersion string

const (
	// PromptV1 is the first version of prompts.
	PromptV1 PromptVersion = "1.0.0"
)

// Prompt represents a versioned prompt with metadata.
type Prompt struct {
	ID          string        // Unique identifier (e.g., "review")
	Version     PromptVersion // Version of this prompt
	Content     string        // The prompt text; may hold {{key}} placeholders
	Description string
	Tags        []string
	Deprecated  bool
}
