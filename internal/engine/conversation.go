package engine

import (
	"errors"
	"fmt"
)

// Role attributes a turn to one side of the conversation.
type Role string

const (
	RoleRequester Role = "user"
	RoleResponder Role = "model"
)

// Part is one semantic unit within a turn. The set of implementations is closed:
// TextPart, ToolCallPart and ToolResultPart.
type Part interface {
	isPart()
}

// TextPart carries free text.
type TextPart struct {
	Text string
}

// ToolCallPart is a tool invocation requested by the model.
type ToolCallPart struct {
	Call ToolCall
}

// ToolResultPart carries a tool's result back to the model.
// Content is always a JSON document; IsError marks an {error, message} payload.
type ToolResultPart struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

func (TextPart) isPart()       {}
func (ToolCallPart) isPart()   {}
func (ToolResultPart) isPart() {}

// Turn is one exchange unit, immutable once appended.
type Turn struct {
	Role  Role
	Parts []Part
}

// Validate checks the turn shape: a known role, at least one part, tool calls only
// from the responder and tool results only from the requester.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleRequester, RoleResponder:
	default:
		return fmt.Errorf("invalid turn role: %q", t.Role)
	}
	if len(t.Parts) == 0 {
		return errors.New("turn has no parts")
	}
	for _, p := range t.Parts {
		switch part := p.(type) {
		case TextPart:
		case ToolCallPart:
			if t.Role != RoleResponder {
				return fmt.Errorf("tool call %s in %s turn", part.Call.Name, t.Role)
			}
		case ToolResultPart:
			if t.Role != RoleRequester {
				return fmt.Errorf("tool result %s in %s turn", part.Name, t.Role)
			}
		case nil:
			return errors.New("nil part")
		default:
			return fmt.Errorf("unknown part type %T", p)
		}
	}
	return nil
}

// Text concatenates the turn's text parts.
func (t Turn) Text() string {
	var s string
	for _, p := range t.Parts {
		if tp, ok := p.(TextPart); ok {
			s += tp.Text
		}
	}
	return s
}

// Conversation is the append-only ordered log of turns for one session.
type Conversation struct {
	turns []Turn
}

// NewConversation returns a conversation seeded with the given turns.
func NewConversation(seed ...Turn) (*Conversation, error) {
	c := &Conversation{}
	for _, t := range seed {
		if err := c.Append(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append validates t and adds it to the log. The parts slice is copied so callers
// cannot mutate a turn after the fact.
func (c *Conversation) Append(t Turn) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Parts = append([]Part(nil), t.Parts...)
	c.turns = append(c.turns, t)
	return nil
}

// Turns returns a copy of the log.
func (c *Conversation) Turns() []Turn {
	return append([]Turn(nil), c.turns...)
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// Last returns the most recent turn.
func (c *Conversation) Last() (Turn, bool) {
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// Unpaired returns every tool call that has no matching result yet. A result pairs
// with the oldest pending call carrying the same ID and tool name.
// Results that match no pending call are reported as an error.
func (c *Conversation) Unpaired() ([]ToolCall, error) {
	var pending []ToolCall
	for i, t := range c.turns {
		for _, p := range t.Parts {
			switch part := p.(type) {
			case ToolCallPart:
				pending = append(pending, part.Call)
			case ToolResultPart:
				idx := -1
				for j, call := range pending {
					if call.ID == part.CallID && call.Name == part.Name {
						idx = j
						break
					}
				}
				if idx < 0 {
					return pending, fmt.Errorf("turn %d: result for %s (%s) has no pending call", i, part.Name, part.CallID)
				}
				pending = append(pending[:idx], pending[idx+1:]...)
			}
		}
	}
	return pending, nil
}
