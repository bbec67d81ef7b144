package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courserag/internal/anthropic"
)

// fakeClient replays a script of responses/errors and records every request.
type fakeClient struct {
	script []scriptStep
	calls  []anthropic.MessageRequest
}

type scriptStep struct {
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls = append(f.calls, req)
	if len(f.script) == 0 {
		return nil, fmt.Errorf("unexpected model call %d", len(f.calls))
	}
	step := f.script[0]
	f.script = f.script[1:]
	return step.resp, step.err
}

func textResponse(text string) scriptStep {
	return scriptStep{resp: &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: anthropic.BlockTypeText, Text: text}},
		StopReason: "end_turn",
	}}
}

func toolUseResponse(id, name string, input map[string]any) scriptStep {
	return scriptStep{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: anthropic.BlockTypeText, Text: "let me look that up"},
			{Type: anthropic.BlockTypeToolUse, ID: id, Name: name, Input: input},
		},
		StopReason: "tool_use",
	}}
}

// fakeExecutor records invocations and fails on request.
type fakeExecutor struct {
	calls  []executedCall
	output string
	failOn int // 1-based call index that errors; 0 never fails
}

type executedCall struct {
	name string
	args map[string]any
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args map[string]any) (string, error) {
	f.calls = append(f.calls, executedCall{name: name, args: args})
	if f.failOn > 0 && len(f.calls) == f.failOn {
		return "", errors.New("store unavailable")
	}
	return f.output, nil
}

var searchTools = []anthropic.Tool{{
	Name:        "search_course_content",
	Description: "search",
	InputSchema: map[string]any{"type": "object"},
}}

func TestGenerate_NoToolUse_SingleCall(t *testing.T) {
	client := &fakeClient{script: []scriptStep{textResponse("plain answer")}}
	g := New(client, Options{SystemPrompt: "base instructions"})

	got := g.Generate(context.Background(), "hi", "", nil, nil)

	require.Equal(t, "plain answer", got)
	require.Len(t, client.calls, 1)
	assert.Empty(t, client.calls[0].Tools, "tools must be absent when none supplied")
	assert.Nil(t, client.calls[0].ToolChoice)
	assert.Equal(t, "base instructions", client.calls[0].System)
}

func TestGenerate_HistoryAppearsInFirstSystemPrompt(t *testing.T) {
	client := &fakeClient{script: []scriptStep{textResponse("ok")}}
	g := New(client, Options{SystemPrompt: "base instructions"})

	g.Generate(context.Background(), "hi", "User: earlier question\nAssistant: earlier answer", nil, nil)

	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].System, "User: earlier question\nAssistant: earlier answer")
	assert.Contains(t, client.calls[0].System, "Previous conversation:")
}

func TestGenerate_SingleToolUse_DispatchesThenFollowsUp(t *testing.T) {
	client := &fakeClient{script: []scriptStep{
		toolUseResponse("toolu_1", "search_course_content", map[string]any{"query": "MCP basics"}),
		textResponse("final answer"),
	}}
	executor := &fakeExecutor{output: "[Course A - Lesson 1]\nMCP is a protocol."}
	g := New(client, Options{SystemPrompt: "base instructions"})

	got := g.Generate(context.Background(), "what is MCP?", "", searchTools, executor)

	require.Equal(t, "final answer", got)
	require.Len(t, executor.calls, 1)
	assert.Equal(t, "search_course_content", executor.calls[0].name)
	assert.Equal(t, map[string]any{"query": "MCP basics"}, executor.calls[0].args)

	require.Len(t, client.calls, 2)
	// First call carries the tool definitions with automatic selection.
	require.NotEmpty(t, client.calls[0].Tools)
	require.Equal(t, "auto", client.calls[0].ToolChoice.Type)

	// Second call sees the assistant turn plus the tool results, with the
	// tool_use id round-tripped unchanged.
	msgs := client.calls[1].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.RoleAssistant, msgs[1].Role)
	require.Equal(t, anthropic.RoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 1)
	assert.Equal(t, anthropic.BlockTypeToolResult, msgs[2].Content[0].Type)
	assert.Equal(t, "toolu_1", msgs[2].Content[0].ToolUseID)
	assert.Equal(t, executor.output, msgs[2].Content[0].Content)

	// Follow-up round announces itself in the system prompt.
	assert.Contains(t, client.calls[1].System, "follow-up round")
}

func TestGenerate_RoundBudgetForcesSynthesisCall(t *testing.T) {
	client := &fakeClient{script: []scriptStep{
		toolUseResponse("toolu_1", "search_course_content", map[string]any{"query": "a"}),
		toolUseResponse("toolu_2", "search_course_content", map[string]any{"query": "b"}),
		textResponse("synthesized answer"),
	}}
	executor := &fakeExecutor{output: "some content"}
	g := New(client, Options{SystemPrompt: "base instructions", MaxRounds: 2})

	got := g.Generate(context.Background(), "compare lessons", "", searchTools, executor)

	require.Equal(t, "synthesized answer", got)
	assert.Len(t, executor.calls, 2, "exactly two tool rounds")
	require.Len(t, client.calls, 3, "two tool rounds plus one synthesis call")

	synthesis := client.calls[2]
	assert.Empty(t, synthesis.Tools, "synthesis call runs with tools disabled")
	assert.Nil(t, synthesis.ToolChoice)
	assert.Equal(t, "base instructions", synthesis.System,
		"synthesis call uses the original system content without the follow-up suffix")
}

func TestRun_ToolFailureRollsBackWholeRound(t *testing.T) {
	client := &fakeClient{script: []scriptStep{
		toolUseResponse("toolu_1", "search_course_content", map[string]any{"query": "a"}),
		toolUseResponse("toolu_2", "search_course_content", map[string]any{"query": "b"}),
	}}
	executor := &fakeExecutor{output: "content", failOn: 2}
	g := New(client, Options{SystemPrompt: "base", MaxRounds: 3})

	conv := NewContext("q", "base", 3)
	// Run one successful round by hand through the machine, then fail.
	got := g.run(context.Background(), conv, searchTools, executor)

	require.Equal(t, msgRoundFailed, got)
	// Round 1 succeeded: user + assistant + tool results survived. The failed
	// second round left no trace.
	assert.Len(t, conv.Messages, 3)
	assert.Equal(t, 1, conv.RoundNumber)
	assert.Equal(t, StateAwaitingFollowup, conv.State)
	assert.NotEmpty(t, conv.ToolExecutionErrors)
}

func TestRun_ModelFailureRestoresSnapshot(t *testing.T) {
	client := &fakeClient{script: []scriptStep{{err: errors.New("backend down")}}}
	g := New(client, Options{SystemPrompt: "base"})

	conv := NewContext("q", "base", 2)
	got := g.run(context.Background(), conv, nil, nil)

	require.Equal(t, msgRoundFailed, got)
	assert.Len(t, conv.Messages, 1, "message log rewound to the seed query")
	assert.Equal(t, StateInitial, conv.State)
	require.Len(t, conv.ToolExecutionErrors, 1)
	assert.Contains(t, conv.ToolExecutionErrors[0], "backend down")
}

func TestHandleModelFailure_WithoutSnapshotEmbedsError(t *testing.T) {
	g := New(&fakeClient{}, Options{SystemPrompt: "base"})
	conv := NewContext("q", "base", 2)

	got := g.handleModelFailure(conv, errors.New("dial tcp: connection refused"))

	assert.True(t, strings.HasPrefix(got, "An error occurred:"), "got %q", got)
	assert.Contains(t, got, "connection refused")
}

func TestGenerate_SynthesisFailureAfterBudgetReturnsFixedMessage(t *testing.T) {
	client := &fakeClient{script: []scriptStep{
		toolUseResponse("toolu_1", "search_course_content", map[string]any{"query": "a"}),
		toolUseResponse("toolu_2", "search_course_content", map[string]any{"query": "b"}),
		{err: errors.New("backend down")},
	}}
	executor := &fakeExecutor{output: "content"}
	g := New(client, Options{SystemPrompt: "base", MaxRounds: 2})

	got := g.Generate(context.Background(), "q", "", searchTools, executor)

	require.Equal(t, msgRoundFailed, got)
}

func TestGenerate_ToolUseWithoutExecutorReturnsText(t *testing.T) {
	client := &fakeClient{script: []scriptStep{
		toolUseResponse("toolu_1", "search_course_content", map[string]any{"query": "a"}),
	}}
	g := New(client, Options{SystemPrompt: "base"})

	got := g.Generate(context.Background(), "q", "", searchTools, nil)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "let me look that up", got)
}

func TestGenerate_MultipleToolUsesInOneRoundKeepOrder(t *testing.T) {
	client := &fakeClient{script: []scriptStep{
		{resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{
				{Type: anthropic.BlockTypeToolUse, ID: "toolu_1", Name: "get_course_outline", Input: map[string]any{"course_name": "MCP"}},
				{Type: anthropic.BlockTypeToolUse, ID: "toolu_2", Name: "search_course_content", Input: map[string]any{"query": "lesson 4"}},
			},
			StopReason: "tool_use",
		}},
		textResponse("combined answer"),
	}}
	executor := &fakeExecutor{output: "result"}
	g := New(client, Options{SystemPrompt: "base"})

	got := g.Generate(context.Background(), "q", "", searchTools, executor)

	require.Equal(t, "combined answer", got)
	require.Len(t, executor.calls, 2)
	assert.Equal(t, "get_course_outline", executor.calls[0].name)
	assert.Equal(t, "search_course_content", executor.calls[1].name)

	results := client.calls[1].Messages[2].Content
	require.Len(t, results, 2, "one user message carries all ordered results")
	assert.Equal(t, "toolu_1", results[0].ToolUseID)
	assert.Equal(t, "toolu_2", results[1].ToolUseID)
}
