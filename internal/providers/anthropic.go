package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ChamsBouzaiene/reviewer/internal/engine"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const (
	anthropicDefaultMaxTokens   = 4096
	anthropicDefaultTemperature = float32(0.1)
)

// AnthropicClient implements engine.LLMClient with the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Anthropic client for the engine.
func NewAnthropicClient(apiKey, modelName string) (*AnthropicClient, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  modelName,
	}, nil
}

// Chat implements engine.LLMClient.
func (c *AnthropicClient) Chat(ctx context.Context, req engine.ChatRequest) (engine.LLMResponse, error) {
	mreq, err := c.buildRequest(req)
	if err != nil {
		return engine.LLMResponse{}, err
	}

	resp, err := c.client.CreateMessages(ctx, mreq)
	if err != nil {
		httpStatus, retryAfter := extractErrorMetadata(err)
		return engine.LLMResponse{}, engine.WrapLLMError(err, httpStatus, retryAfter)
	}
	return fromAnthropicResponse(resp), nil
}

func (c *AnthropicClient) buildRequest(req engine.ChatRequest) (anthropic.MessagesRequest, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	toolDefs, err := toAnthropicTools(req.Tools)
	if err != nil {
		return anthropic.MessagesRequest{}, err
	}

	maxTokens := anthropicDefaultMaxTokens
	if req.Options.MaxOutputTokens > 0 {
		maxTokens = req.Options.MaxOutputTokens
	}
	temperature := anthropicDefaultTemperature
	if req.Options.Temperature > 0 {
		temperature = req.Options.Temperature
	}

	mreq := anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		Messages:    toAnthropicMessages(req.History),
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
	if req.SystemInstruction != "" {
		mreq.MultiSystem = []anthropic.MessageSystemPart{{Type: "text", Text: req.SystemInstruction}}
	}
	if len(toolDefs) > 0 {
		mreq.Tools = toolDefs
	}
	return mreq, nil
}

// toAnthropicMessages converts turns to messages. The API requires strictly
// alternating roles, so consecutive turns from the same side are merged.
func toAnthropicMessages(history []engine.Turn) []anthropic.Message {
	var msgs []anthropic.Message
	for _, turn := range history {
		role := anthropic.RoleUser
		if turn.Role == engine.RoleResponder {
			role = anthropic.RoleAssistant
		}

		var content []anthropic.MessageContent
		for _, p := range turn.Parts {
			switch part := p.(type) {
			case engine.TextPart:
				if part.Text != "" {
					content = append(content, anthropic.NewTextMessageContent(part.Text))
				}
			case engine.ToolCallPart:
				argsJSON, _ := json.Marshal(part.Call.Args)
				content = append(content, anthropic.NewToolUseMessageContent(
					part.Call.ID,
					part.Call.Name,
					json.RawMessage(argsJSON),
				))
			case engine.ToolResultPart:
				result := part.Content
				if result == "" {
					result = "{}"
				}
				content = append(content, anthropic.NewToolResultMessageContent(part.CallID, result, part.IsError))
			}
		}
		if len(content) == 0 {
			continue
		}

		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			msgs[n-1].Content = append(msgs[n-1].Content, content...)
			continue
		}
		msgs = append(msgs, anthropic.Message{Role: role, Content: content})
	}
	return msgs
}

func toAnthropicTools(schemas []engine.ToolSchema) ([]anthropic.ToolDefinition, error) {
	var defs []anthropic.ToolDefinition
	for _, ts := range schemas {
		var schemaObj map[string]any
		if err := json.Unmarshal([]byte(ts.JSONSchema), &schemaObj); err != nil {
			return nil, fmt.Errorf("invalid tool schema JSON for %s: %w", ts.Name, err)
		}
		defs = append(defs, anthropic.ToolDefinition{
			Name:        ts.Name,
			Description: ts.Description,
			InputSchema: schemaObj,
		})
	}
	return defs, nil
}

func fromAnthropicResponse(resp anthropic.MessagesResponse) engine.LLMResponse {
	var text string
	var toolCalls []engine.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case anthropic.MessagesContentTypeText:
			if block.Text != nil {
				text += *block.Text
			}
		case "tool_use":
			if block.MessageContentToolUse == nil || block.Name == "" {
				continue
			}
			call := engine.ToolCall{ID: block.ID, Name: block.Name, Args: map[string]any{}}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &call.Args); err != nil {
					call.Args = map[string]any{}
					call.Error = fmt.Sprintf("input is not a JSON object: %v", err)
				}
			}
			toolCalls = append(toolCalls, call)
		}
	}

	finishReason := "stop"
	switch {
	case len(toolCalls) > 0:
		finishReason = "tool_calls"
	case resp.StopReason == "max_tokens":
		finishReason = "length"
	}

	return engine.LLMResponse{
		Text:      text,
		ToolCalls: toolCalls,
		Usage: engine.Usage{
			Prompt:     resp.Usage.InputTokens,
			Completion: resp.Usage.OutputTokens,
			Total:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		FinishReason: finishReason,
	}
}
