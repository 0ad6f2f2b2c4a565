package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIClient implements engine.LLMClient against any OpenAI-compatible
// chat-completions endpoint (OpenAI, Gemini, DeepSeek, Groq, Ollama, LM Studio).
type OpenAIClient struct {
	client  *openai.Client
	model   string
	baseURL string
}

// NewOpenAIClient creates a new OpenAI client for the engine.
func NewOpenAIClient(apiKey, modelName, baseURL string) (*OpenAIClient, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(config),
		model:   modelName,
		baseURL: baseURL,
	}, nil
}

// Chat implements engine.LLMClient.
func (c *OpenAIClient) Chat(ctx context.Context, req engine.ChatRequest) (engine.LLMResponse, error) {
	creq, err := c.buildRequest(req)
	if err != nil {
		return engine.LLMResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		httpStatus, retryAfter := extractErrorMetadata(err)
		return engine.LLMResponse{}, engine.WrapLLMError(err, httpStatus, retryAfter)
	}
	return fromOpenAIResponse(resp)
}

func (c *OpenAIClient) buildRequest(req engine.ChatRequest) (openai.ChatCompletionRequest, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	tools, err := toOpenAITools(req.Tools)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}

	creq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(req.SystemInstruction, req.History),
	}
	if len(tools) > 0 {
		creq.Tools = tools
		creq.ToolChoice = "auto"
	}
	if req.Options.MaxOutputTokens > 0 {
		creq.MaxTokens = req.Options.MaxOutputTokens
	}
	if req.Options.Temperature > 0 {
		temperature := req.Options.Temperature
		creq.Temperature = &temperature
	}
	return creq, nil
}

// toOpenAIMessages flattens the conversation into chat-completion messages. A
// requester turn's tool results become one tool message each, keyed by call ID.
func toOpenAIMessages(system string, history []engine.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, turn := range history {
		var text []string
		switch turn.Role {
		case engine.RoleResponder:
			var calls []openai.ToolCall
			for _, p := range turn.Parts {
				switch part := p.(type) {
				case engine.TextPart:
					text = append(text, part.Text)
				case engine.ToolCallPart:
					argsJSON, _ := json.Marshal(part.Call.Args)
					calls = append(calls, openai.ToolCall{
						ID:   part.Call.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      part.Call.Name,
							Arguments: string(argsJSON),
						},
					})
				}
			}
			// An empty string is serialized as null, which some endpoints reject.
			content := strings.Join(text, "\n")
			if content == "" {
				content = " "
			}
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				Content:   content,
				ToolCalls: calls,
			})

		case engine.RoleRequester:
			for _, p := range turn.Parts {
				switch part := p.(type) {
				case engine.TextPart:
					text = append(text, part.Text)
				case engine.ToolResultPart:
					content := part.Content
					if content == "" {
						content = "{}"
					}
					msgs = append(msgs, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						ToolCallID: part.CallID,
						Name:       part.Name,
						Content:    content,
					})
				}
			}
			if len(text) > 0 {
				msgs = append(msgs, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleUser,
					Content: strings.Join(text, "\n"),
				})
			}
		}
	}
	return msgs
}

func toOpenAITools(schemas []engine.ToolSchema) ([]openai.Tool, error) {
	var tools []openai.Tool
	for _, ts := range schemas {
		var schemaObj map[string]any
		if err := json.Unmarshal([]byte(ts.JSONSchema), &schemaObj); err != nil {
			return nil, fmt.Errorf("invalid tool schema JSON for %s: %w", ts.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ts.Name,
				Description: ts.Description,
				Parameters:  schemaObj,
			},
		})
	}
	return tools, nil
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) (engine.LLMResponse, error) {
	if len(resp.Choices) == 0 {
		return engine.LLMResponse{}, fmt.Errorf("empty response from model")
	}
	choice := resp.Choices[0]

	var toolCalls []engine.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		call := engine.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: map[string]any{}}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Args); err != nil {
				call.Args = map[string]any{}
				call.Error = fmt.Sprintf("arguments are not a JSON object: %v", err)
			}
		}
		toolCalls = append(toolCalls, call)
	}

	finishReason := "stop"
	switch {
	case len(toolCalls) > 0:
		finishReason = "tool_calls"
	case choice.FinishReason == openai.FinishReasonLength:
		finishReason = "length"
	case choice.FinishReason == openai.FinishReasonContentFilter:
		finishReason = "content_filter"
	}

	return engine.LLMResponse{
		Text:      choice.Message.Content,
		ToolCalls: toolCalls,
		Usage: engine.Usage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
		FinishReason: finishReason,
	}, nil
}
