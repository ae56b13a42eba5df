package qa

import (
	"context"

	"pdf-qa-backend/models"
)

// Capability is the external embedding/generation model consumed by the
// pipeline. Implementations are expected to be network-bound; callers
// supply timeouts via ctx. internal/ai provides the Gemini-backed
// implementation; tests use stubs.
type Capability interface {
	// Embed maps text to a fixed-length vector. Embeddings are only
	// comparable when produced by the same model, so the same Capability
	// instance must serve both index builds and question embedding.
	Embed(ctx context.Context, text string) (models.Vector, error)

	// Generate produces text for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Store persists document metadata and the append-only query log. It is
// independent of the in-memory index lifecycle.
type Store interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	AppendQueryRecord(ctx context.Context, rec *models.QueryRecord) error
}

// AnswerCache caches answered questions per document. A nil cache, or a
// failing one, never affects correctness.
type AnswerCache interface {
	Get(ctx context.Context, documentID, question string) (*models.AnswerResponse, bool)
	Set(ctx context.Context, documentID, question string, ans *models.AnswerResponse)
}
