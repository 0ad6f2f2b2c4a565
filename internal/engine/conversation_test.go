package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnValidate(t *testing.T) {
	call := ToolCall{ID: "c1", Name: "read_file"}
	result := ToolResultPart{CallID: "c1", Name: "read_file", Content: "{}"}

	tests := []struct {
		name    string
		turn    Turn
		wantErr string
	}{
		{"requester text", Turn{Role: RoleRequester, Parts: []Part{TextPart{Text: "hi"}}}, ""},
		{"responder call", Turn{Role: RoleResponder, Parts: []Part{ToolCallPart{Call: call}}}, ""},
		{"requester result", Turn{Role: RoleRequester, Parts: []Part{result}}, ""},
		{"unknown role", Turn{Role: "system", Parts: []Part{TextPart{Text: "x"}}}, "invalid turn role"},
		{"no parts", Turn{Role: RoleRequester}, "no parts"},
		{"call from requester", Turn{Role: RoleRequester, Parts: []Part{ToolCallPart{Call: call}}}, "tool call read_file in user turn"},
		{"result from responder", Turn{Role: RoleResponder, Parts: []Part{result}}, "tool result read_file in model turn"},
		{"nil part", Turn{Role: RoleRequester, Parts: []Part{nil}}, "nil part"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.turn.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTurnText(t *testing.T) {
	turn := Turn{Role: RoleResponder, Parts: []Part{
		TextPart{Text: "a"},
		ToolCallPart{Call: ToolCall{Name: "x"}},
		TextPart{Text: "b"},
	}}
	assert.Equal(t, "ab", turn.Text())
}

func TestConversation_AppendCopiesParts(t *testing.T) {
	conv, err := NewConversation(Turn{Role: RoleRequester, Parts: []Part{TextPart{Text: "seed"}}})
	require.NoError(t, err)

	parts := []Part{TextPart{Text: "original"}}
	require.NoError(t, conv.Append(Turn{Role: RoleResponder, Parts: parts}))
	parts[0] = TextPart{Text: "mutated"}

	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, "original", last.Text())
	assert.Equal(t, 2, conv.Len())

	turns := conv.Turns()
	turns[0] = Turn{}
	assert.Equal(t, "seed", conv.Turns()[0].Text())
}

func TestConversation_RejectsInvalidTurn(t *testing.T) {
	conv, err := NewConversation()
	require.NoError(t, err)
	_, ok := conv.Last()
	assert.False(t, ok)

	assert.Error(t, conv.Append(Turn{Role: RoleRequester}))
	assert.Equal(t, 0, conv.Len())

	_, err = NewConversation(Turn{Role: "bogus", Parts: []Part{TextPart{}}})
	assert.Error(t, err)
}

func TestConversation_Unpaired(t *testing.T) {
	a := ToolCall{ID: "a", Name: "list_files"}
	b := ToolCall{ID: "b", Name: "read_file"}

	conv, err := NewConversation(
		Turn{Role: RoleRequester, Parts: []Part{TextPart{Text: "go"}}},
		Turn{Role: RoleResponder, Parts: []Part{ToolCallPart{Call: a}}},
		Turn{Role: RoleRequester, Parts: []Part{ToolResultPart{CallID: "a", Name: "list_files", Content: "{}"}}},
		Turn{Role: RoleResponder, Parts: []Part{ToolCallPart{Call: b}}},
	)
	require.NoError(t, err)

	pending, err := conv.Unpaired()
	require.NoError(t, err)
	assert.Equal(t, []ToolCall{b}, pending)

	require.NoError(t, conv.Append(Turn{Role: RoleRequester, Parts: []Part{
		ToolResultPart{CallID: "b", Name: "read_file", Content: "{}"},
	}}))
	pending, err = conv.Unpaired()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestConversation_UnpairedOrphanResult(t *testing.T) {
	conv, err := NewConversation(
		Turn{Role: RoleRequester, Parts: []Part{ToolResultPart{CallID: "x", Name: "read_file"}}},
	)
	require.NoError(t, err)

	_, err = conv.Unpaired()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no pending call")
}

func TestConversation_UnpairedMatchesNameToo(t *testing.T) {
	conv, err := NewConversation(
		Turn{Role: RoleResponder, Parts: []Part{ToolCallPart{Call: ToolCall{ID: "same", Name: "list_files"}}}},
		Turn{Role: RoleRequester, Parts: []Part{ToolResultPart{CallID: "same", Name: "read_file"}}},
	)
	require.NoError(t, err)

	_, err = conv.Unpaired()
	assert.Error(t, err)
}
