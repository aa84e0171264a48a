package core

import "encoding/json"

const (
	AppName      = "Lectern"
	AppUserAgent = "Lectern-Agent/0.1"
	AppVersion   = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	StopReasonEndTurn = "end_turn"
	StopReasonToolUse = "tool_use"
)

// Tool is a tool definition as presented to the model. InputSchema is a
// JSON Schema object with required and optional fields.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolCall is a single tool invocation requested by the model. ID must be
// echoed back in the matching ToolResult so the model can correlate
// multi-call rounds.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult carries a tool's textual output back to the model. Errors are
// encoded as content, never as a separate channel.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
}

type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// Completion is a single model response.
type Completion struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// Source is a provenance marker for content a tool returned,
// e.g. "Introduction to RAG Systems - Lesson 2" with a deep link.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// NoLesson marks a chunk or filter that is not tied to a specific lesson.
// Lesson numbering starts at 0 in course documents, so the sentinel is -1.
const NoLesson = -1

// CourseChunk is one indexed piece of course content.
type CourseChunk struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	LessonLink   string
	ChunkIndex   int
}

type ChunkMetadata struct {
	CourseTitle  string
	LessonNumber int
	LessonLink   string
}

// SearchResults is a ranked similarity-search response. Documents and
// Metadata are parallel slices in backend ranking order.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
}

func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}
