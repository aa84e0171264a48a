package test

import (
	"context"
	"hash/fnv"
	"path/filepath"
	"testing"

	"github.com/lecternhq/lectern/internal/config"
	"github.com/lecternhq/lectern/internal/search"
	"github.com/lecternhq/lectern/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

const EmbeddingDimension = 768

// HashEmbedder is a deterministic stand-in for the embedding service:
// identical texts map to identical vectors, different texts land far
// apart. Good enough to drive exact-match retrieval through the real
// vector store.
type HashEmbedder struct{}

func (HashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return hashVec(text), nil
}

func (HashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = hashVec(t)
	}
	return vecs, nil
}

func hashVec(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	v := make([]float32, EmbeddingDimension)
	v[h.Sum32()%EmbeddingDimension] = 1.0
	return v
}

// NewTestStore builds a search store over a throwaway database file.
func NewTestStore(t *testing.T) (*search.Store, *sqlite.MessagesRepo) {
	t.Helper()

	db, err := sqlite.NewDB(context.Background(), filepath.Join(t.TempDir(), "lectern.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.RAGConfig{
		EmbeddingDimension:    EmbeddingDimension,
		MaxResults:            5,
		ChunkSize:             800,
		ChunkOverlap:          100,
		TitleMatchMaxDistance: 1.2,
	}
	store := search.NewStore(cfg, sqlite.NewCatalogRepo(db), sqlite.NewChunksRepo(db), HashEmbedder{})
	return store, sqlite.NewMessagesRepo(db)
}
