package generator

import "courserag/internal/anthropic"

// State tracks where a single exchange is in its tool-calling lifecycle.
type State int

const (
	StateInitial State = iota
	StateToolExecuting
	StateAwaitingFollowup
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateToolExecuting:
		return "tool_executing"
	case StateAwaitingFollowup:
		return "awaiting_followup"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// DefaultMaxRounds bounds how many tool-dispatch rounds an exchange may run.
const DefaultMaxRounds = 2

// Context is the mutable conversation state for one exchange. A fresh Context
// is created per call to Generate and discarded afterwards; it is never
// shared between exchanges.
type Context struct {
	Messages            []anthropic.MessageParam
	State               State
	RoundNumber         int
	MaxRounds           int
	SystemContent       string
	ToolExecutionErrors []string

	rollback *snapshot
}

// snapshot is the single-slot recovery point. Creating a new one discards the
// previous; restoring consumes it.
type snapshot struct {
	messages    []anthropic.MessageParam
	roundNumber int
	state       State
}

// NewContext seeds a conversation with the user's query as the first message.
func NewContext(query, systemContent string, maxRounds int) *Context {
	if maxRounds < 1 {
		maxRounds = DefaultMaxRounds
	}
	return &Context{
		Messages:      []anthropic.MessageParam{anthropic.TextMessage(anthropic.RoleUser, query)},
		State:         StateInitial,
		MaxRounds:     maxRounds,
		SystemContent: systemContent,
	}
}

// validTransitions is the complete legal state graph. Complete is absorbing;
// nothing returns to Initial.
var validTransitions = map[State][]State{
	StateInitial:          {StateToolExecuting, StateComplete},
	StateToolExecuting:    {StateAwaitingFollowup, StateComplete},
	StateAwaitingFollowup: {StateToolExecuting, StateComplete},
	StateComplete:         {},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the context to the requested state when the edge is legal.
// Illegal requests leave the context untouched and return false; callers must
// check the result.
func Transition(c *Context, to State) bool {
	if !CanTransition(c.State, to) {
		return false
	}
	c.State = to
	return true
}
