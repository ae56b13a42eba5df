package qa

import (
	"context"
	"fmt"
	"time"

	"pdf-qa-backend/internal/logger"
	"pdf-qa-backend/internal/telemetry"
	"pdf-qa-backend/models"

	"github.com/google/uuid"
)

// Options tunes the pipeline. Zero values fall back to defaults.
type Options struct {
	Chunking          models.ChunkingConfig
	TopK              int
	MaxContextChars   int
	CapabilityTimeout time.Duration
}

// Service is the pipeline facade exposed to the HTTP layer: Upload and
// Ask, both returning typed failures from the errors.go taxonomy.
type Service struct {
	capability Capability
	store      Store
	cache      AnswerCache
	metrics    *telemetry.Metrics

	chunker   *Chunker
	state     *DocumentState
	retriever *Retriever
	synth     *Synthesizer
	topK      int
}

// NewService wires the pipeline. store is required; cache and metrics may
// be nil. The capability is wrapped with the configured per-call timeout
// so embedding and generation never block indefinitely.
func NewService(capability Capability, store Store, cache AnswerCache, metrics *telemetry.Metrics, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.CapabilityTimeout <= 0 {
		opts.CapabilityTimeout = 30 * time.Second
	}

	timed := withTimeout(capability, opts.CapabilityTimeout)
	state := NewDocumentState()

	return &Service{
		capability: timed,
		store:      store,
		cache:      cache,
		metrics:    metrics,
		chunker:    NewChunker(opts.Chunking),
		state:      state,
		retriever:  NewRetriever(state, timed),
		synth:      NewSynthesizer(timed, opts.MaxContextChars),
		topK:       opts.TopK,
	}
}

// State exposes the document state manager's reads for collaborators that
// only need to know whether a document is active.
func (s *Service) State() *DocumentState { return s.state }

// Upload chunks and indexes extracted document text, then atomically
// replaces the active document/index pair. The previous pair stays
// queryable until the new index is fully built; a failed build leaves it
// untouched.
func (s *Service) Upload(ctx context.Context, filename, text string) (*models.UploadResponse, error) {
	chunks, err := s.chunker.Chunk(text)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Text:       text,
		TextLength: len(text),
		CreatedAt:  time.Now().UTC(),
	}

	// Metadata persistence is independent of the index lifecycle: the
	// document row survives even if the build below fails.
	if err := s.store.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	seq := s.state.BeginBuild()
	start := time.Now()
	idx, err := BuildIndex(ctx, s.capability, doc, chunks)
	if err != nil {
		logger.Error("index build failed, previous index untouched",
			"document_id", doc.ID, "filename", filename, "error", err)
		return nil, err
	}
	buildTime := time.Since(start)

	if !s.state.Publish(idx, seq) {
		logger.Warn("index build superseded by newer upload, discarding result",
			"document_id", doc.ID, "filename", filename)
		return nil, fmt.Errorf("%w: document %s", ErrBuildSuperseded, doc.ID)
	}

	if s.metrics != nil {
		s.metrics.RecordIndexBuild(buildTime.Seconds(), len(chunks))
	}
	logger.Info("document indexed",
		"document_id", doc.ID, "filename", filename,
		"chunks", len(chunks), "build_ms", buildTime.Milliseconds())

	return &models.UploadResponse{
		DocumentID:   doc.ID,
		Filename:     doc.Filename,
		ChunkCount:   len(chunks),
		TextLength:   doc.TextLength,
		IndexBuild:   buildTime,
		IndexBuildMS: buildTime.Milliseconds(),
		Message:      "document uploaded and indexed",
	}, nil
}

// Ask answers a question from the active document. Every attempt, failed
// ones included, is appended to the query log.
func (s *Service) Ask(ctx context.Context, question string) (*models.AnswerResponse, error) {
	doc := s.state.CurrentDocument()
	if doc == nil {
		// No capability calls happen on this path.
		s.record(ctx, "", question, nil, ErrNoActiveDocument)
		return nil, ErrNoActiveDocument
	}

	if s.cache != nil {
		if ans, ok := s.cache.Get(ctx, doc.ID, question); ok {
			ans.Cached = true
			// A cached answer is still an answered question: it counts in
			// the query log and the metrics like any other.
			s.record(ctx, doc.ID, question, ans, nil)
			if s.metrics != nil {
				s.metrics.RecordQuestion(ans.Confidence, true)
			}
			return ans, nil
		}
	}

	retrieved, snapshot, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		s.record(ctx, doc.ID, question, nil, err)
		return nil, err
	}

	answer, confidence, err := s.synth.Synthesize(ctx, question, retrieved)
	if err != nil {
		s.record(ctx, snapshot.ID, question, nil, err)
		return nil, err
	}

	ans := &models.AnswerResponse{
		Answer:       answer,
		Confidence:   confidence,
		DocumentName: snapshot.Filename,
	}
	s.record(ctx, snapshot.ID, question, ans, nil)
	if s.cache != nil {
		s.cache.Set(ctx, snapshot.ID, question, ans)
	}
	if s.metrics != nil {
		s.metrics.RecordQuestion(confidence, true)
	}
	return ans, nil
}

// record appends to the query log. Logging failures are reported but
// never fail the request.
func (s *Service) record(ctx context.Context, documentID, question string, ans *models.AnswerResponse, cause error) {
	rec := &models.QueryRecord{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Question:   question,
		CreatedAt:  time.Now().UTC(),
	}
	if ans != nil {
		rec.Answer = &ans.Answer
		rec.Confidence = &ans.Confidence
	}
	if cause != nil {
		rec.FailureKind = FailureKind(cause)
		if s.metrics != nil {
			s.metrics.RecordQuestion(0, false)
		}
	}
	if err := s.store.AppendQueryRecord(ctx, rec); err != nil {
		logger.Error("failed to append query record", "question", question, "error", err)
	}
}

// timeoutCapability applies the caller-enforced timeout to every
// capability call.
type timeoutCapability struct {
	inner Capability
	d     time.Duration
}

func withTimeout(inner Capability, d time.Duration) Capability {
	return &timeoutCapability{inner: inner, d: d}
}

func (t *timeoutCapability) Embed(ctx context.Context, text string) (models.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Embed(ctx, text)
}

func (t *timeoutCapability) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Generate(ctx, prompt)
}
