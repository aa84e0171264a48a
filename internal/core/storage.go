package core

import "context"

type MessagesRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}

// CourseCatalog stores course metadata plus a title embedding per course
// used for fuzzy course-name resolution.
type CourseCatalog interface {
	AddCourse(ctx context.Context, course Course, titleVec []float32) error
	GetCourse(ctx context.Context, title string) (*Course, error)
	ResolveTitle(ctx context.Context, vec []float32, maxDistance float64) (string, error)
	ListTitles(ctx context.Context) ([]string, error)
	HasCourse(ctx context.Context, title string) (bool, error)
	CourseCount(ctx context.Context) (int, error)
}

// ChunkRepository stores content chunks and their embeddings.
type ChunkRepository interface {
	AddChunks(ctx context.Context, chunks []CourseChunk, vecs [][]float32) error
	Search(ctx context.Context, vec []float32, courseTitle string, lessonNumber int, limit int) (SearchResults, error)
}
