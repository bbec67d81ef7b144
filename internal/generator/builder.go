package generator

import "courserag/internal/anthropic"

// followupDirective is appended to the system prompt only while the exchange
// is awaiting a follow-up round, telling the model it may build on the tool
// results it already has.
const followupDirective = `

You are now in a follow-up round. You have access to previous tool results and can make additional tool calls to:
- Compare information across different sources
- Search for additional details based on previous results
- Synthesize information from multiple searches

Consider the previous tool results and determine if you need more information to provide a complete answer.`

// BuildSystemPrompt derives the system instructions for the next model call.
// Only AwaitingFollowup alters the prompt; every other state uses the
// exchange's fixed system content as-is.
func BuildSystemPrompt(c *Context) string {
	if c.State == StateAwaitingFollowup {
		return c.SystemContent + followupDirective
	}
	return c.SystemContent
}

// CreateRollbackPoint captures messages, round number, and state before a
// risky step. At most one snapshot is live; a new one replaces the old.
func CreateRollbackPoint(c *Context) {
	messages := make([]anthropic.MessageParam, len(c.Messages))
	copy(messages, c.Messages)
	c.rollback = &snapshot{
		messages:    messages,
		roundNumber: c.RoundNumber,
		state:       c.State,
	}
}

// Restore rewinds the context to the last snapshot and consumes it. Returns
// false, leaving the context unchanged, when no snapshot exists.
func Restore(c *Context) bool {
	if c.rollback == nil {
		return false
	}
	c.Messages = c.rollback.messages
	c.RoundNumber = c.rollback.roundNumber
	c.State = c.rollback.state
	c.rollback = nil
	return true
}
