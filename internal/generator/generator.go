// Package generator drives multi-round tool-calling exchanges against an
// Anthropic-style Messages backend. One call to Generate runs a bounded loop
// of model calls and tool dispatches and always returns plain text to the
// caller; collaborator failures never escape as errors.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"courserag/internal/anthropic"
)

// MessagesClient is the model backend consumed by the orchestrator. It must
// be safe for concurrent use; the orchestrator itself adds no locking.
type MessagesClient interface {
	CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

// ToolExecutor dispatches a named tool with the arguments the model supplied.
// Failures must surface as errors, not as error-shaped output strings.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// Caller-safe texts returned on the failure paths. These are the exchange's
// whole answer, so they stay human-readable and free of internal detail.
const (
	msgRoundFailed       = "I encountered an error while processing your request. Please try again."
	msgSynthesisDegraded = "I've gathered information but encountered an error in the final response. Please try again."
	msgNoResponse        = "No response generated."
)

// Options tune a Generator. Zero values fall back to defaults.
type Options struct {
	SystemPrompt string
	MaxRounds    int
	Temperature  *float64
	MaxTokens    int
}

// Generator owns the model client and base prompt shared by all exchanges.
// Per-exchange state lives in a Context created inside Generate, so a single
// Generator serves concurrent callers.
type Generator struct {
	client MessagesClient
	opts   Options
	logger *slog.Logger
}

func New(client MessagesClient, opts Options) *Generator {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	if opts.MaxRounds < 1 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	return &Generator{
		client: client,
		opts:   opts,
		logger: slog.Default().With("component", "generator"),
	}
}

// Generate answers a query, optionally letting the model call tools across up
// to MaxRounds rounds. history, tools, and executor may be empty/nil; with no
// tool-use in the response the first model call's text is the answer.
func (g *Generator) Generate(ctx context.Context, query, history string, tools []anthropic.Tool, executor ToolExecutor) string {
	systemContent := g.opts.SystemPrompt
	if history != "" {
		systemContent = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", g.opts.SystemPrompt, history)
	}
	conv := NewContext(query, systemContent, g.opts.MaxRounds)

	return g.run(ctx, conv, tools, executor)
}

// run is the state machine over one exchange.
func (g *Generator) run(ctx context.Context, conv *Context, tools []anthropic.Tool, executor ToolExecutor) string {
	for conv.State != StateComplete && conv.RoundNumber < conv.MaxRounds {
		// Recovery point for the round about to run.
		CreateRollbackPoint(conv)

		resp, err := g.callModel(ctx, conv, tools)
		if err != nil {
			return g.handleModelFailure(conv, err)
		}

		if resp.HasToolUse() && executor != nil {
			// Must succeed by construction: Initial and AwaitingFollowup both
			// permit ToolExecuting.
			Transition(conv, StateToolExecuting)

			conv.Messages = append(conv.Messages, anthropic.MessageParam{
				Role:    anthropic.RoleAssistant,
				Content: resp.Content,
			})

			if !g.executeToolsForRound(ctx, resp, conv, executor) {
				Restore(conv)
				return msgRoundFailed
			}

			conv.RoundNumber++
			if conv.RoundNumber < conv.MaxRounds {
				Transition(conv, StateAwaitingFollowup)
				continue
			}

			// Round budget exhausted: force a synthesis answer from the
			// accumulated tool results.
			final, err := g.callFinal(ctx, conv)
			if err != nil {
				return g.handleModelFailure(conv, err)
			}
			Transition(conv, StateComplete)
			return final.Text()
		}

		// No tool use: the response is the answer.
		Transition(conv, StateComplete)
		return resp.Text()
	}

	// Defensive fallback. The transitions above always end in Complete with a
	// return, but if the loop exits another way the caller still gets text.
	if conv.State != StateComplete {
		final, err := g.callFinal(ctx, conv)
		if err != nil {
			g.logger.Error("final synthesis call failed", "error", err)
			return msgSynthesisDegraded
		}
		return final.Text()
	}
	return msgNoResponse
}

// callModel issues one model call with the state-derived system prompt. Tool
// definitions ride along only when supplied and the exchange is still open.
func (g *Generator) callModel(ctx context.Context, conv *Context, tools []anthropic.Tool) (*anthropic.MessageResponse, error) {
	req := anthropic.MessageRequest{
		Messages:    conv.Messages,
		System:      BuildSystemPrompt(conv),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}
	if len(tools) > 0 && conv.State != StateComplete {
		req.Tools = tools
		req.ToolChoice = &anthropic.ToolChoice{Type: "auto"}
	}
	return g.client.CreateMessage(ctx, req)
}

// callFinal issues the synthesis call: original system content, tools off.
func (g *Generator) callFinal(ctx context.Context, conv *Context) (*anthropic.MessageResponse, error) {
	return g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Messages:    conv.Messages,
		System:      conv.SystemContent,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
}

// executeToolsForRound dispatches every tool_use block in response order and,
// only when all succeed, appends a single user message carrying the ordered
// results. Any failure discards the round's partial results and reports false
// so the caller can roll back; the message log is never left half-updated.
func (g *Generator) executeToolsForRound(ctx context.Context, resp *anthropic.MessageResponse, conv *Context, executor ToolExecutor) bool {
	var results []anthropic.ContentBlock
	for _, block := range resp.Content {
		if block.Type != anthropic.BlockTypeToolUse {
			continue
		}
		output, err := executor.Execute(ctx, block.Name, block.Input)
		if err != nil {
			conv.ToolExecutionErrors = append(conv.ToolExecutionErrors, err.Error())
			g.logger.Error("tool execution failed",
				"tool", block.Name, "round", conv.RoundNumber, "error", err)
			return false
		}
		results = append(results, anthropic.ToolResultBlock(block.ID, output))
	}

	if len(results) > 0 {
		conv.Messages = append(conv.Messages, anthropic.MessageParam{
			Role:    anthropic.RoleUser,
			Content: results,
		})
	}
	return true
}

// handleModelFailure records a backend error and rewinds to the last
// snapshot. With no snapshot to consume, the error detail is embedded in the
// returned text instead.
func (g *Generator) handleModelFailure(conv *Context, err error) string {
	conv.ToolExecutionErrors = append(conv.ToolExecutionErrors, err.Error())
	g.logger.Error("model call failed", "round", conv.RoundNumber, "error", err)
	if Restore(conv) {
		return msgRoundFailed
	}
	return fmt.Sprintf("An error occurred: %v", err)
}

// defaultSystemPrompt steers the model toward the two course tools and
// explains the multi-round budget. Callers usually override this with the
// configured prompt plus conversation history.
const defaultSystemPrompt = `You are an AI assistant for course materials with access to exactly two tools. You can make multiple tool calls across up to 2 rounds to gather complete information.

TOOL SELECTION:
- Questions about course structure, syllabus, lesson lists, or outlines: use get_course_outline.
- Questions about the content inside specific lessons: use search_course_content.
- When you use get_course_outline, present the exact results returned.

MULTI-ROUND TOOL CALLING:
You can make sequential tool calls across multiple rounds. Use this to compare
information across courses or lessons, to fetch an outline first and then
search specific lesson content, or to gather several pieces of information for
a comprehensive answer.

Answer directly without tools when the question needs no course material.`
