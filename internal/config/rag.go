package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/lecternhq/lectern/pkg/log"
)

type RAGConfig struct {
	EmbeddingURL    string `env:"LECTERN_EMBEDDING_URL,required,notEmpty"`
	EmbeddingAPIKey string `env:"LECTERN_EMBEDDING_API_KEY"`

	// Must match the dimension of the vec0 tables in the migrations.
	EmbeddingDimension int `env:"LECTERN_EMBEDDING_DIMENSION" envDefault:"768"`

	MaxResults   int `env:"LECTERN_MAX_RESULTS" envDefault:"5"`
	ChunkSize    int `env:"LECTERN_CHUNK_SIZE" envDefault:"800"`
	ChunkOverlap int `env:"LECTERN_CHUNK_OVERLAP" envDefault:"100"`

	// Max L2 distance for a course-title match to count as resolved.
	TitleMatchMaxDistance float64 `env:"LECTERN_TITLE_MATCH_MAX_DISTANCE" envDefault:"1.2"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	cfg := &RAGConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	return cfg
}
