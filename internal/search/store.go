package search

import (
	"context"
	"fmt"

	"github.com/lecternhq/lectern/internal/config"
	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/pkg/log"
)

// Store is the retrieval backend: semantic search over indexed chunks,
// fuzzy course-title resolution, and course-outline lookup. It owns query
// embedding so callers deal in plain text.
type Store struct {
	catalog  core.CourseCatalog
	chunks   core.ChunkRepository
	embedder core.Embedder

	maxResults       int
	titleMaxDistance float64
}

func NewStore(cfg *config.RAGConfig, catalog core.CourseCatalog, chunks core.ChunkRepository, embedder core.Embedder) *Store {
	return &Store{
		catalog:          catalog,
		chunks:           chunks,
		embedder:         embedder,
		maxResults:       cfg.MaxResults,
		titleMaxDistance: cfg.TitleMatchMaxDistance,
	}
}

// ResolveCourseTitle maps a user-supplied (possibly partial) course name to
// the closest stored title. Returns "" when no title is close enough.
func (s *Store) ResolveCourseTitle(ctx context.Context, name string) (string, error) {
	vec, err := s.embedder.EmbedQuery(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	title, err := s.catalog.ResolveTitle(ctx, vec, s.titleMaxDistance)
	if err != nil {
		return "", fmt.Errorf("resolve course title: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("name", name).Str("resolved", title).Msg("course title resolution")
	return title, nil
}

// SearchContent runs a similarity search over course chunks. courseTitle
// must already be a resolved stored title ("" for unscoped); lessonNumber
// is core.NoLesson when not filtering by lesson.
func (s *Store) SearchContent(ctx context.Context, query, courseTitle string, lessonNumber int) (core.SearchResults, error) {
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return core.SearchResults{}, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.chunks.Search(ctx, vec, courseTitle, lessonNumber, s.maxResults)
	if err != nil {
		return core.SearchResults{}, fmt.Errorf("content search: %w", err)
	}
	return results, nil
}

// GetCourseOutline returns full course metadata for an exact stored title,
// or nil when the course does not exist.
func (s *Store) GetCourseOutline(ctx context.Context, title string) (*core.Course, error) {
	return s.catalog.GetCourse(ctx, title)
}

func (s *Store) ListCourseTitles(ctx context.Context) ([]string, error) {
	return s.catalog.ListTitles(ctx)
}

func (s *Store) CourseCount(ctx context.Context) (int, error) {
	return s.catalog.CourseCount(ctx)
}

func (s *Store) HasCourse(ctx context.Context, title string) (bool, error) {
	return s.catalog.HasCourse(ctx, title)
}

// AddCourse indexes course metadata plus the title embedding used for
// fuzzy resolution.
func (s *Store) AddCourse(ctx context.Context, course core.Course) error {
	vec, err := s.embedder.EmbedQuery(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}
	return s.catalog.AddCourse(ctx, course, vec)
}

// AddCourseChunks embeds and stores content chunks in one batch.
func (s *Store) AddCourseChunks(ctx context.Context, chunks []core.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vecs, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	return s.chunks.AddChunks(ctx, chunks, vecs)
}
