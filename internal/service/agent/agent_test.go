package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAI replays a fixed sequence of completions and records every
// call it receives.
type scriptedAI struct {
	script []core.Completion
	calls  []generateCall
}

type generateCall struct {
	system   string
	messages []core.Message
	tools    []core.Tool
}

func (s *scriptedAI) Generate(ctx context.Context, system string, messages []core.Message, defs []core.Tool) (core.Completion, error) {
	s.calls = append(s.calls, generateCall{system: system, messages: messages, tools: defs})
	if len(s.calls) > len(s.script) {
		return core.Completion{}, errors.New("unexpected extra call")
	}
	return s.script[len(s.calls)-1], nil
}

type failingAI struct{ err error }

func (f *failingAI) Generate(ctx context.Context, system string, messages []core.Message, defs []core.Tool) (core.Completion, error) {
	return core.Completion{}, f.err
}

// recordingDispatcher answers every tool call with a canned result.
type recordingDispatcher struct {
	result   tools.Result
	err      error
	executed []string
}

func (d *recordingDispatcher) Definitions() []core.Tool {
	return []core.Tool{{Name: "search_course_content", InputSchema: json.RawMessage(`{}`)}}
}

func (d *recordingDispatcher) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	d.executed = append(d.executed, name)
	if d.err != nil {
		return tools.Result{}, d.err
	}
	return d.result, nil
}

func textCompletion(text string) core.Completion {
	return core.Completion{Text: text, StopReason: core.StopReasonEndTurn}
}

func toolCompletion(id string) core.Completion {
	return core.Completion{
		StopReason: core.StopReasonToolUse,
		ToolCalls: []core.ToolCall{
			{ID: id, Name: "search_course_content", Input: json.RawMessage(`{"query":"rag"}`)},
		},
	}
}

func TestAnswerDirectResponse(t *testing.T) {
	ai := &scriptedAI{script: []core.Completion{textCompletion("Paris is the capital of France.")}}
	dispatch := &recordingDispatcher{}

	answer, sources, err := NewAgent(ai, 2).Answer(context.Background(), "What is the capital of France?", "", dispatch)
	require.NoError(t, err)

	assert.Equal(t, "Paris is the capital of France.", answer)
	assert.Empty(t, sources)
	require.Len(t, ai.calls, 1)
	assert.Empty(t, dispatch.executed)

	// Tools are always offered on the opening call
	require.Len(t, ai.calls[0].tools, 1)
	assert.Equal(t, "search_course_content", ai.calls[0].tools[0].Name)
}

func TestAnswerSingleToolRound(t *testing.T) {
	ai := &scriptedAI{script: []core.Completion{
		toolCompletion("toolu_1"),
		textCompletion("RAG retrieves documents before generating."),
	}}
	dispatch := &recordingDispatcher{result: tools.Result{
		Content: "[Course - Lesson 1]\nRAG content",
		Sources: []core.Source{{Label: "Course - Lesson 1", Link: "https://example.com/l1"}},
	}}

	answer, sources, err := NewAgent(ai, 2).Answer(context.Background(), "What is RAG?", "", dispatch)
	require.NoError(t, err)

	assert.Equal(t, "RAG retrieves documents before generating.", answer)
	require.Len(t, ai.calls, 2)
	assert.Equal(t, []string{"search_course_content"}, dispatch.executed)

	// Round one is under budget, so the follow-up still offers tools
	assert.NotEmpty(t, ai.calls[1].tools)

	require.Len(t, sources, 1)
	assert.Equal(t, "Course - Lesson 1", sources[0].Label)

	// The follow-up call carries the tool exchange back to the model
	msgs := ai.calls[1].messages
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	require.Len(t, msgs[2].ToolResults, 1)
	assert.Equal(t, "toolu_1", msgs[2].ToolResults[0].ToolUseID)
}

func TestAnswerRoundBudgetForcesFinalCall(t *testing.T) {
	// The model asks for tools on every turn it is allowed to; with a
	// budget of 2 that means exactly 3 calls and 2 executed rounds, the
	// last call made without tools.
	ai := &scriptedAI{script: []core.Completion{
		toolCompletion("toolu_1"),
		toolCompletion("toolu_2"),
		textCompletion("Final synthesized answer."),
	}}
	dispatch := &recordingDispatcher{result: tools.Result{Content: "chunk"}}

	answer, _, err := NewAgent(ai, 2).Answer(context.Background(), "Compare lesson 1 and 2", "", dispatch)
	require.NoError(t, err)

	assert.Equal(t, "Final synthesized answer.", answer)
	require.Len(t, ai.calls, 3)
	assert.Len(t, dispatch.executed, 2)

	assert.NotEmpty(t, ai.calls[0].tools)
	assert.NotEmpty(t, ai.calls[1].tools)
	assert.Nil(t, ai.calls[2].tools, "forced final call must not offer tools")
}

func TestAnswerAccumulatesSourcesAcrossRounds(t *testing.T) {
	ai := &scriptedAI{script: []core.Completion{
		toolCompletion("toolu_1"),
		toolCompletion("toolu_2"),
		textCompletion("done"),
	}}
	dispatch := &recordingDispatcher{result: tools.Result{
		Content: "chunk",
		Sources: []core.Source{{Label: "A"}, {Label: "B"}},
	}}

	_, sources, err := NewAgent(ai, 2).Answer(context.Background(), "q", "", dispatch)
	require.NoError(t, err)

	require.Len(t, sources, 4)
	assert.Equal(t, "A", sources[0].Label)
	assert.Equal(t, "B", sources[1].Label)
	assert.Equal(t, "A", sources[2].Label)
}

func TestAnswerToolFaultShortCircuits(t *testing.T) {
	ai := &scriptedAI{script: []core.Completion{toolCompletion("toolu_1")}}
	dispatch := &recordingDispatcher{err: errors.New("vector store unreachable")}

	answer, sources, err := NewAgent(ai, 2).Answer(context.Background(), "q", "", dispatch)
	require.NoError(t, err)

	assert.Contains(t, answer, "Error executing tool 'search_course_content'")
	assert.Contains(t, answer, "vector store unreachable")
	assert.Empty(t, sources)
	// No further model calls after the fault
	assert.Len(t, ai.calls, 1)
}

func TestAnswerProviderErrorPropagates(t *testing.T) {
	ai := &failingAI{err: errors.New("api unavailable")}

	_, _, err := NewAgent(ai, 2).Answer(context.Background(), "q", "", &recordingDispatcher{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unavailable")
}

func TestAnswerEmptyFinalFallsBack(t *testing.T) {
	ai := &scriptedAI{script: []core.Completion{
		toolCompletion("toolu_1"),
		toolCompletion("toolu_2"),
		{StopReason: core.StopReasonEndTurn},
	}}
	dispatch := &recordingDispatcher{result: tools.Result{Content: "chunk"}}

	answer, _, err := NewAgent(ai, 2).Answer(context.Background(), "q", "", dispatch)
	require.NoError(t, err)
	assert.Equal(t, "No response generated.", answer)
}

func TestBuildSystemFoldsHistory(t *testing.T) {
	assert.Equal(t, systemPrompt, buildSystem(""))

	withHistory := buildSystem("User: hi\nAssistant: hello")
	assert.Contains(t, withHistory, systemPrompt)
	assert.Contains(t, withHistory, "Previous conversation:\nUser: hi\nAssistant: hello")
}
