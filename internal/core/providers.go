package core

import "context"

// AIProvider is a single synchronous generate call. The model may answer
// directly or request tool invocations via Completion.ToolCalls.
type AIProvider interface {
	Generate(ctx context.Context, system string, messages []Message, tools []Tool) (Completion, error)
}

type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
