package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lecternhq/lectern/internal/core"
)

const searchCourseName = "search_course_content"

const searchCourseSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "What to search for in the course content" },
    "course_name": { "type": "string", "description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')" },
    "lesson_number": { "type": "integer", "description": "Specific lesson number to search within (e.g. 1, 2, 3)" }
  },
  "required": ["query"]
}
`

// SearchCourse is the semantic content search tool: fuzzy course scoping,
// exact lesson filtering, formatted chunk blocks with provenance.
type SearchCourse struct {
	store ContentStore
}

func NewSearchCourse(store ContentStore) *SearchCourse {
	return &SearchCourse{store: store}
}

func (t *SearchCourse) Definition() core.Tool {
	return core.Tool{
		Name:        searchCourseName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: json.RawMessage(searchCourseSchema),
	}
}

type searchCourseArgs struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

func (t *SearchCourse) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var input searchCourseArgs
	if err := json.Unmarshal(args, &input); err != nil {
		return Result{Content: fmt.Sprintf("Invalid arguments for %s: %v", searchCourseName, err)}, nil
	}

	// Resolve the fuzzy course name first; an unresolved name must not
	// fall through to an unscoped search.
	courseTitle := ""
	if input.CourseName != "" {
		resolved, err := t.store.ResolveCourseTitle(ctx, input.CourseName)
		if err != nil {
			return Result{}, err
		}
		if resolved == "" {
			return Result{Content: fmt.Sprintf("No course found matching '%s'", input.CourseName)}, nil
		}
		courseTitle = resolved
	}

	lessonNumber := core.NoLesson
	if input.LessonNumber != nil {
		lessonNumber = *input.LessonNumber
	}

	results, err := t.store.SearchContent(ctx, input.Query, courseTitle, lessonNumber)
	if err != nil {
		return Result{}, err
	}

	if results.IsEmpty() {
		return Result{Content: emptyMessage(courseTitle, lessonNumber)}, nil
	}

	return formatResults(results), nil
}

func emptyMessage(courseTitle string, lessonNumber int) string {
	var sb strings.Builder
	sb.WriteString("No relevant content found")
	if courseTitle != "" {
		fmt.Fprintf(&sb, " in course '%s'", courseTitle)
	}
	if lessonNumber != core.NoLesson {
		fmt.Fprintf(&sb, " in lesson %d", lessonNumber)
	}
	sb.WriteString(".")
	return sb.String()
}

// formatResults renders one labeled block per chunk in backend ranking
// order and records one Source per chunk.
func formatResults(results core.SearchResults) Result {
	var blocks []string
	var sources []core.Source

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := fmt.Sprintf("[%s]", meta.CourseTitle)
		label := meta.CourseTitle
		if meta.LessonNumber != core.NoLesson {
			header = fmt.Sprintf("[%s - Lesson %d]", meta.CourseTitle, meta.LessonNumber)
			label = fmt.Sprintf("%s - Lesson %d", meta.CourseTitle, meta.LessonNumber)
		}

		blocks = append(blocks, header+"\n"+doc)
		sources = append(sources, core.Source{Label: label, Link: meta.LessonLink})
	}

	return Result{
		Content: strings.Join(blocks, "\n\n"),
		Sources: sources,
	}
}
