package engine

import "strings"

// EstimateTokens provides a rough token count estimation.
// Uses a simple heuristic: ~4 characters per token for English/code.
// It is only used for logging.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}

	charCount := len([]rune(text))
	whitespaceCount := strings.Count(text, " ") + strings.Count(text, "\n") + strings.Count(text, "\t")

	// (characters / 4) + (whitespace / 6)
	estimated := (charCount / 4) + (whitespaceCount / 6)
	if estimated < 1 {
		return 1
	}
	return estimated
}

// EstimateRequestTokens estimates the prompt size of a gateway request: system
// instruction, every part of every turn, and the tool descriptors.
func EstimateRequestTokens(req ChatRequest) (messages, tools int) {
	messages = EstimateTokens(req.SystemInstruction)
	for _, t := range req.History {
		messages += 4 // role + separators
		for _, p := range t.Parts {
			switch part := p.(type) {
			case TextPart:
				messages += EstimateTokens(part.Text)
			case ToolCallPart:
				messages += EstimateTokens(part.Call.Name) + estimateArgs(part.Call.Args)
			case ToolResultPart:
				messages += EstimateTokens(part.Name) + EstimateTokens(part.Content)
			}
		}
	}
	for _, s := range req.Tools {
		tools += EstimateTokens(s.Name) + EstimateTokens(s.Description) + EstimateTokens(s.JSONSchema) + 10
	}
	return messages, tools
}

func estimateArgs(args map[string]any) int {
	n := 0
	for k, v := range args {
		n += EstimateTokens(k)
		if s, ok := v.(string); ok {
			n += EstimateTokens(s)
		} else {
			n++
		}
	}
	return n
}
