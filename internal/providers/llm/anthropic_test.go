package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnthropic(url string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider(url, "test-key", "claude-sonnet-4-20250514"),
		maxTokens:    800,
	}
}

func TestGenerateDirectAnswer(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"content": [{"type": "text", "text": "RAG is retrieval-augmented generation."}],
			"stop_reason": "end_turn"
		}`)
	}))
	defer srv.Close()

	a := testAnthropic(srv.URL)
	comp, err := a.Generate(context.Background(), "You are helpful.",
		[]core.Message{{Role: core.RoleUser, Content: "What is RAG?"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, "RAG is retrieval-augmented generation.", comp.Text)
	assert.Equal(t, core.StopReasonEndTurn, comp.StopReason)
	assert.Empty(t, comp.ToolCalls)

	// Without tools there must be no tools or tool_choice in the payload
	_, hasTools := gotBody["tools"]
	assert.False(t, hasTools)
	_, hasChoice := gotBody["tool_choice"]
	assert.False(t, hasChoice)
	assert.Equal(t, "You are helpful.", gotBody["system"])
}

func TestGenerateWithToolsOffered(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		io.WriteString(w, `{
			"content": [
				{"type": "text", "text": "Let me look that up."},
				{"type": "tool_use", "id": "toolu_01", "name": "search_course_content", "input": {"query": "embeddings"}}
			],
			"stop_reason": "tool_use"
		}`)
	}))
	defer srv.Close()

	tools := []core.Tool{{
		Name:        "search_course_content",
		Description: "Search course materials",
		InputSchema: json.RawMessage(`{"type":"object"}`),
	}}

	a := testAnthropic(srv.URL)
	comp, err := a.Generate(context.Background(), "system",
		[]core.Message{{Role: core.RoleUser, Content: "what are embeddings?"}}, tools)

	require.NoError(t, err)
	assert.Equal(t, core.StopReasonToolUse, comp.StopReason)
	require.Len(t, comp.ToolCalls, 1)
	assert.Equal(t, "toolu_01", comp.ToolCalls[0].ID)
	assert.Equal(t, "search_course_content", comp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query": "embeddings"}`, string(comp.ToolCalls[0].Input))

	assert.Contains(t, gotBody, "tools")
	choice, ok := gotBody["tool_choice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "auto", choice["type"])
}

func TestGenerateErrorsOnHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "overloaded"}`)
	}))
	defer srv.Close()

	a := testAnthropic(srv.URL)
	_, err := a.Generate(context.Background(), "", []core.Message{{Role: core.RoleUser, Content: "hi"}}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
}

func TestToWireMessages(t *testing.T) {
	messages := []core.Message{
		{Role: core.RoleUser, Content: "what is in lesson 2?"},
		{Role: core.RoleAssistant, Content: "Checking.", ToolCalls: []core.ToolCall{
			{ID: "toolu_01", Name: "get_course_outline", Input: json.RawMessage(`{"course_name":"RAG"}`)},
		}},
		{Role: core.RoleUser, ToolResults: []core.ToolResult{
			{ToolUseID: "toolu_01", Content: "Course: Introduction to RAG Systems"},
		}},
	}

	wire := toWireMessages(messages)
	require.Len(t, wire, 3)

	assert.Equal(t, "user", wire[0].Role)
	require.Len(t, wire[0].Content, 1)
	assert.Equal(t, "text", wire[0].Content[0].Type)

	// assistant turn keeps its text block ahead of the tool_use block
	require.Len(t, wire[1].Content, 2)
	assert.Equal(t, "text", wire[1].Content[0].Type)
	assert.Equal(t, "tool_use", wire[1].Content[1].Type)
	assert.Equal(t, "toolu_01", wire[1].Content[1].ID)

	// tool results travel as user-role tool_result blocks
	assert.Equal(t, "user", wire[2].Role)
	require.Len(t, wire[2].Content, 1)
	assert.Equal(t, "tool_result", wire[2].Content[0].Type)
	assert.Equal(t, "toolu_01", wire[2].Content[0].ToolUseID)
}
