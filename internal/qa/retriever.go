package qa

import (
	"context"
	"fmt"

	"pdf-qa-backend/models"
)

// Retriever answers "which passages are relevant to this question". It
// embeds the question with the same capability used at index-build time
// (embeddings from different models are not comparable) and ranks the
// active index's chunks by similarity.
type Retriever struct {
	state    *DocumentState
	embedder Capability
}

func NewRetriever(state *DocumentState, embedder Capability) *Retriever {
	return &Retriever{state: state, embedder: embedder}
}

// Retrieve returns the top k chunks for the question along with the
// document they belong to, so callers see one consistent snapshot even if
// an upload swaps the index mid-flight. k is clamped to [MinTopK,MaxTopK].
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]models.ScoredChunk, *models.Document, error) {
	idx := r.state.Current()
	if idx == nil {
		return nil, nil, ErrNoActiveDocument
	}

	qvec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: question embedding: %v", ErrEmbeddingUnavailable, err)
	}

	doc := idx.Document
	return idx.Search(qvec, k), &doc, nil
}
