package qa

import (
	"context"
	"fmt"
	"strings"

	"pdf-qa-backend/models"
)

// DefaultMaxContextChars bounds the concatenated chunk text passed to the
// generation capability, keeping prompts inside model context windows.
const DefaultMaxContextChars = 12000

// Synthesizer turns a question plus retrieved chunks into a grounded
// answer with a confidence score.
type Synthesizer struct {
	generator       Capability
	maxContextChars int
}

func NewSynthesizer(generator Capability, maxContextChars int) *Synthesizer {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}
	return &Synthesizer{generator: generator, maxContextChars: maxContextChars}
}

// Synthesize generates an answer from the retrieved chunks, in retrieval
// order. It fails with ErrNoContext before any capability call when no
// chunks were retrieved: fabricating an answer with no grounding must be
// a distinguishable failure, not a low-confidence guess.
//
// Confidence is the top retrieval score. The generation capability
// exposes no usable confidence signal of its own, so retrieval similarity
// is the whole signal; it is deterministic given identical inputs.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, retrieved []models.ScoredChunk) (string, float64, error) {
	if len(retrieved) == 0 {
		return "", 0, ErrNoContext
	}

	prompt := s.buildPrompt(question, retrieved)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	return strings.TrimSpace(answer), retrieved[0].Score, nil
}

// buildPrompt concatenates chunk texts in retrieval order into a bounded
// context block ahead of the question. Chunks past the budget are dropped
// whole; the top-ranked chunk is always included, truncated if it alone
// exceeds the budget.
func (s *Synthesizer) buildPrompt(question string, retrieved []models.ScoredChunk) string {
	ctxBuilder := new(strings.Builder)
	used := 0
	for i, sc := range retrieved {
		text := sc.Chunk.Text
		if used+len(text) > s.maxContextChars {
			if i > 0 {
				break
			}
			text = truncateRunes(text, s.maxContextChars)
		}
		fmt.Fprintf(ctxBuilder, "Context %d:\n%s\n\n", i+1, text)
		used += len(text)
	}

	return fmt.Sprintf(
		"You are answering questions about a single uploaded document. Use only the context below; if the context does not contain the answer, say so.\n\n%sPlease answer this question: %s",
		ctxBuilder.String(), question)
}

func truncateRunes(text string, max int) string {
	if len(text) <= max {
		return text
	}
	runes := []rune(text)
	out := new(strings.Builder)
	for _, r := range runes {
		if out.Len()+len(string(r)) > max {
			break
		}
		out.WriteRune(r)
	}
	return out.String()
}
