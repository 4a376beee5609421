package casematch

import "context"

// Embedder converts text to vector embeddings.
// Required for text search and for persons without a precomputed text vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// FaceEmbedder converts a photo to a face embedding.
// Required only when photos are passed instead of face vectors.
type FaceEmbedder interface {
	EmbedFace(ctx context.Context, image []byte) ([]float32, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
