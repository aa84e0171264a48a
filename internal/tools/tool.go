package tools

import (
	"context"
	"encoding/json"

	"github.com/lecternhq/lectern/internal/core"
)

// Result is one tool execution outcome. Content always carries text --
// "nothing found" states are content, not errors. Sources lists the
// provenance of any material the content was built from, in discovery
// order.
type Result struct {
	Content string
	Sources []core.Source
}

// Tool is a single retrieval capability exposed to the model. Execute must
// reject malformed arguments with a descriptive content string; only
// non-recoverable conditions (backend unreachable) may return an error.
type Tool interface {
	Definition() core.Tool
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}

// ContentStore is the slice of the retrieval backend the tools consume.
type ContentStore interface {
	ResolveCourseTitle(ctx context.Context, name string) (string, error)
	SearchContent(ctx context.Context, query, courseTitle string, lessonNumber int) (core.SearchResults, error)
	GetCourseOutline(ctx context.Context, title string) (*core.Course, error)
}
