package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lecternhq/lectern/internal/core"
)

const courseOutlineName = "get_course_outline"

const courseOutlineSchema = `
{
  "type": "object",
  "properties": {
    "course_name": { "type": "string", "description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')" }
  },
  "required": ["course_name"]
}
`

// CourseOutline returns a course's structure (title, link, instructor and
// ordered lesson list) rather than content snippets.
type CourseOutline struct {
	store ContentStore
}

func NewCourseOutline(store ContentStore) *CourseOutline {
	return &CourseOutline{store: store}
}

func (t *CourseOutline) Definition() core.Tool {
	return core.Tool{
		Name:        courseOutlineName,
		Description: "Get the complete outline of a course including title, link, and all lessons with their numbers and titles",
		InputSchema: json.RawMessage(courseOutlineSchema),
	}
}

type courseOutlineArgs struct {
	CourseName string `json:"course_name"`
}

func (t *CourseOutline) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var input courseOutlineArgs
	if err := json.Unmarshal(args, &input); err != nil {
		return Result{Content: fmt.Sprintf("Invalid arguments for %s: %v", courseOutlineName, err)}, nil
	}
	if input.CourseName == "" {
		return Result{Content: fmt.Sprintf("Invalid arguments for %s: course_name is required", courseOutlineName)}, nil
	}

	title, err := t.store.ResolveCourseTitle(ctx, input.CourseName)
	if err != nil {
		return Result{}, err
	}
	if title == "" {
		return Result{Content: fmt.Sprintf("No course found matching '%s'", input.CourseName)}, nil
	}

	course, err := t.store.GetCourseOutline(ctx, title)
	if err != nil {
		return Result{}, err
	}
	if course == nil {
		return Result{Content: fmt.Sprintf("No course found matching '%s'", input.CourseName)}, nil
	}

	return formatOutline(course), nil
}

func formatOutline(course *core.Course) Result {
	lessons := make([]core.Lesson, len(course.Lessons))
	copy(lessons, course.Lessons)
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Number < lessons[j].Number })

	var sb strings.Builder
	fmt.Fprintf(&sb, "Course: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&sb, "Course Link: %s\n", course.Link)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&sb, "Instructor: %s\n", course.Instructor)
	}
	fmt.Fprintf(&sb, "Total Lessons: %d\n", len(lessons))
	sb.WriteString("Lesson List:\n")
	for _, lesson := range lessons {
		fmt.Fprintf(&sb, "  Lesson %d: %s\n", lesson.Number, lesson.Title)
	}

	// Outline answers are self-describing; only the course itself is
	// tracked as provenance.
	return Result{
		Content: strings.TrimRight(sb.String(), "\n"),
		Sources: []core.Source{{Label: course.Title, Link: course.Link}},
	}
}
