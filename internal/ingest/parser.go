package ingest

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/inbucket/html2text"
	"github.com/lecternhq/lectern/internal/core"
)

var lessonHeaderRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// ParsedLesson is one lesson section of a course document with its raw
// text body.
type ParsedLesson struct {
	Number int
	Title  string
	Link   string
	Text   string
}

// ParsedCourse is a fully parsed course document.
type ParsedCourse struct {
	Course  core.Course
	Lessons []ParsedLesson
}

// ParseDocument reads the course document format: a metadata header
// ("Course Title:", "Course Link:", "Course Instructor:") followed by
// "Lesson N: Title" sections, each optionally opening with a
// "Lesson Link:" line. Text before the first lesson header that is not
// metadata belongs to lesson 0 implicitly only when tagged; untagged
// preamble is dropped.
func ParseDocument(name, content string) (*ParsedCourse, error) {
	parsed := &ParsedCourse{}
	course := &parsed.Course

	var current *ParsedLesson
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(body.String())
		parsed.Lessons = append(parsed.Lessons, *current)
		current = nil
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := lessonHeaderRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &ParsedLesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		if current == nil {
			switch {
			case strings.HasPrefix(trimmed, "Course Title:"):
				course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
			case strings.HasPrefix(trimmed, "Course Link:"):
				course.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
			case strings.HasPrefix(trimmed, "Course Instructor:"):
				course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
			}
			continue
		}

		if strings.HasPrefix(trimmed, "Lesson Link:") && current.Link == "" && body.Len() == 0 {
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			continue
		}

		body.WriteString(line)
		body.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	flush()

	if course.Title == "" {
		// Fall back to the file name so untitled documents still index.
		course.Title = name
	}

	for _, lesson := range parsed.Lessons {
		course.Lessons = append(course.Lessons, core.Lesson{
			Number: lesson.Number,
			Title:  lesson.Title,
			Link:   lesson.Link,
		})
	}

	return parsed, nil
}

// StripHTML converts an HTML document to plain text before parsing.
func StripHTML(content string) (string, error) {
	text, err := html2text.FromString(content, html2text.Options{TextOnly: true})
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return text, nil
}
