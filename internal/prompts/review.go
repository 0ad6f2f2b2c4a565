package prompts

import "fmt"

const (
	// ReviewPromptID is the system instruction for review sessions.
	ReviewPromptID = "review"
	// TaskPromptID is the opening requester message; it takes {{directory}}.
	TaskPromptID = "review_task"
)

func registerBuiltins(r *PromptRegistry) {
	_ = r.Register(&Prompt{
		ID:      ReviewPromptID,
		Version: PromptV1,
		Content: `You are an expert code reviewer. Use tools to:
1. List files
2. Read files
3. Fix real issues
4. Write corrected code
When finished, return ONLY a text summary.`,
		Description: "Review-and-fix system instruction",
		Tags:        []string{"review", "fix"},
	})

	_ = r.Register(&Prompt{
		ID:          TaskPromptID,
		Version:     PromptV1,
		Content:     `Review and fix code in: {{directory}}`,
		Description: "Opening message naming the target directory",
		Tags:        []string{"review", "task"},
	})
}

// TaskMessage renders the opening message for a review of dir.
func TaskMessage(r *PromptRegistry, dir string) (string, error) {
	p, err := r.GetLatest(TaskPromptID)
	if err != nil {
		return "", err
	}
	return NewPromptBuilderFrom(p).SetVariable("directory", dir).Build()
}

// RulesSection wraps project rules for inclusion in the system instruction.
func RulesSection(rules string) string {
	return fmt.Sprintf("[PROJECT RULES]\nThe following rules are defined for this project. Follow them strictly:\n\n%s\n[END PROJECT RULES]", rules)
}
