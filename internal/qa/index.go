package qa

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pdf-qa-backend/models"
)

// Top-k bounds for retrieval. Out-of-range values are clamped, not
// rejected.
const (
	MinTopK = 1
	MaxTopK = 20
)

// Entry pairs a chunk with its embedding.
type Entry struct {
	Chunk  models.Chunk
	Vector models.Vector
}

// Index is the searchable in-memory collection of (chunk, vector) pairs
// for exactly one document. An Index is immutable after BuildIndex
// returns; replacement happens as a whole through DocumentState.
type Index struct {
	Document models.Document
	Entries  []Entry
}

// BuildIndex embeds every chunk and assembles an index off to the side.
// The build is all-or-nothing: if any chunk fails to embed the whole
// build fails and no partial index is ever visible. Chunks are stamped
// with the document identity here.
func BuildIndex(ctx context.Context, embedder Capability, doc models.Document, chunks []models.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}

	entries := make([]Entry, 0, len(chunks))
	for _, ch := range chunks {
		vec, err := embedder.Embed(ctx, ch.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d of %d: %v", ErrEmbeddingUnavailable, ch.Seq+1, len(chunks), err)
		}
		ch.DocumentID = doc.ID
		entries = append(entries, Entry{Chunk: ch, Vector: vec})
	}

	return &Index{Document: doc, Entries: entries}, nil
}

// Search returns the top k entries by similarity to the query vector,
// descending, ties broken by ascending chunk seq. Scores are cosine
// similarity mapped to [0,1] with 1.0 for identical direction.
func (idx *Index) Search(query models.Vector, k int) []models.ScoredChunk {
	if k < MinTopK {
		k = MinTopK
	}
	if k > MaxTopK {
		k = MaxTopK
	}

	scored := make([]models.ScoredChunk, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		scored = append(scored, models.ScoredChunk{
			Chunk: e.Chunk,
			Score: CosineScore(query, e.Vector),
		})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Seq < scored[j].Chunk.Seq
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// CosineScore maps cosine similarity into [0,1]: (1+cos)/2, so identical
// vectors score 1.0 and opposite vectors score 0. A zero-norm vector on
// either side scores 0.
func CosineScore(a, b models.Vector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Guard against float drift outside [-1,1].
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return (1 + cos) / 2
}
