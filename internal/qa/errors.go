package qa

import "errors"

// Sentinel errors for the answering pipeline. Callers match them with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrEmptyInput means the chunker received empty or whitespace-only
	// text. This is an upstream validation bug, not a capability failure.
	ErrEmptyInput = errors.New("document text is empty or whitespace-only")

	// ErrEmbeddingUnavailable means the embedding capability failed
	// (transport, quota, timeout) after the bounded retry.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

	// ErrGenerationUnavailable means the generation capability failed
	// after the bounded retry.
	ErrGenerationUnavailable = errors.New("generation capability unavailable")

	// ErrNoActiveDocument means no document has been uploaded yet.
	ErrNoActiveDocument = errors.New("no active document, upload a document first")

	// ErrNoContext means retrieval produced no usable chunks. Surfaced
	// distinctly from generation failures so callers can tell "no
	// relevant content" apart from "model unreachable".
	ErrNoContext = errors.New("retrieval returned no usable context")

	// ErrBuildSuperseded means an index build finished after a newer
	// upload had already started; its result was discarded.
	ErrBuildSuperseded = errors.New("index build superseded by a newer upload")
)

// FailureKind names the error class for the query log.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "embedding_unavailable"
	case errors.Is(err, ErrGenerationUnavailable):
		return "generation_unavailable"
	case errors.Is(err, ErrNoActiveDocument):
		return "no_active_document"
	case errors.Is(err, ErrNoContext):
		return "no_context"
	case errors.Is(err, ErrBuildSuperseded):
		return "build_superseded"
	default:
		return "internal"
	}
}
