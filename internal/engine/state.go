package engine

// OutcomeKind tags how a session ended.
type OutcomeKind string

const (
	OutcomeSummary         OutcomeKind = "summary"
	OutcomeBudgetExhausted OutcomeKind = "budget_exhausted"
	OutcomeFailure         OutcomeKind = "failure"
)

// Outcome is the result of one Run. Exactly one of Summary or Reason is meaningful,
// selected by Kind.
type Outcome struct {
	Kind    OutcomeKind
	Summary string // OutcomeSummary: the model's terminal text
	Reason  string // OutcomeFailure / OutcomeBudgetExhausted: human-readable cause
	Steps   int    // model round-trips performed
	Usage   Usage  // accumulated token usage
}

// State is owned by the driver for the lifetime of one Run.
type State struct {
	SessionID         string
	Conversation      *Conversation
	SystemInstruction string
	Step              int  // model round-trips completed
	Retries           int  // retry attempts (tracked separately from steps)
	Done              bool // true once the model returned a terminal response
	Model             string
	MaxSteps          int
	Totals            Usage // accumulated token usage across all calls
	ToolCallCount     int
	Summary           string
}

// Append adds a turn to the conversation.
func (s *State) Append(t Turn) error { return s.Conversation.Append(t) }
