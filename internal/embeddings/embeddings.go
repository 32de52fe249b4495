package embeddings

import "context"

// EmbeddingProvider produces vector representations for text.
// Repeated calls with identical text must yield vectors that compare as
// near-identical under the similarity metric; drift large enough to flip a
// threshold decision is a provider bug.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
