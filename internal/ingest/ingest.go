package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/internal/providers/rag"
	"github.com/lecternhq/lectern/pkg/log"
)

// Indexer is the slice of the retrieval backend the ingester writes to.
type Indexer interface {
	HasCourse(ctx context.Context, title string) (bool, error)
	AddCourse(ctx context.Context, course core.Course) error
	AddCourseChunks(ctx context.Context, chunks []core.CourseChunk) error
}

// Ingester walks a documents directory and indexes every course file
// found there. Courses already present in the index are skipped, so
// re-running ingest against the same directory is cheap.
type Ingester struct {
	index   Indexer
	chunker rag.ChunkerConfig
}

func NewIngester(index Indexer, chunker rag.ChunkerConfig) *Ingester {
	return &Ingester{index: index, chunker: chunker}
}

// Stats summarizes one ingest run.
type Stats struct {
	Courses int
	Chunks  int
	Skipped int
}

// Run indexes every supported file directly under dir. A file that fails
// to parse aborts the run; a course that already exists is skipped.
func (in *Ingester) Run(ctx context.Context, dir string) (Stats, error) {
	logger := log.FromCtx(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("read docs dir: %w", err)
	}

	var stats Stats
	for _, entry := range entries {
		if entry.IsDir() || !supportedFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		added, chunks, err := in.ingestFile(ctx, path)
		if err != nil {
			return stats, fmt.Errorf("ingest %s: %w", entry.Name(), err)
		}
		if !added {
			stats.Skipped++
			continue
		}
		stats.Courses++
		stats.Chunks += chunks
		logger.Info().Str("file", entry.Name()).Int("chunks", chunks).Msg("indexed course")
	}

	return stats, nil
}

func (in *Ingester) ingestFile(ctx context.Context, path string) (bool, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, 0, err
	}

	content := string(raw)
	if strings.EqualFold(filepath.Ext(path), ".html") {
		content, err = StripHTML(content)
		if err != nil {
			return false, 0, err
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parsed, err := ParseDocument(name, content)
	if err != nil {
		return false, 0, err
	}

	exists, err := in.index.HasCourse(ctx, parsed.Course.Title)
	if err != nil {
		return false, 0, err
	}
	if exists {
		return false, 0, nil
	}

	chunks := in.chunkCourse(parsed)
	if err := in.index.AddCourse(ctx, parsed.Course); err != nil {
		return false, 0, err
	}
	if err := in.index.AddCourseChunks(ctx, chunks); err != nil {
		return false, 0, err
	}
	return true, len(chunks), nil
}

// chunkCourse splits each lesson body and prefixes every chunk with its
// course and lesson context so a chunk stays attributable after
// similarity search ranks it in isolation.
func (in *Ingester) chunkCourse(parsed *ParsedCourse) []core.CourseChunk {
	var out []core.CourseChunk
	index := 0
	for _, lesson := range parsed.Lessons {
		if lesson.Text == "" {
			continue
		}
		for _, chunk := range rag.ChunkText(lesson.Text, in.chunker) {
			out = append(out, core.CourseChunk{
				Content:      fmt.Sprintf("Course %s Lesson %d content: %s", parsed.Course.Title, lesson.Number, chunk.Text),
				CourseTitle:  parsed.Course.Title,
				LessonNumber: lesson.Number,
				LessonLink:   lesson.Link,
				ChunkIndex:   index,
			})
			index++
		}
	}
	return out
}

func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".html":
		return true
	}
	return false
}
