package qa

import (
	"sync"
	"sync/atomic"

	"pdf-qa-backend/models"
)

// DocumentState owns the single active document/index pair. It has two
// states: Empty (no upload yet) and Ready (one active index). Readers get
// a consistent snapshot via Current; writers build a full index off to
// the side and publish it with a single pointer swap, so in-flight
// queries finish against the index they started with.
type DocumentState struct {
	mu     sync.Mutex // serializes publishes
	active atomic.Pointer[Index]
	latest atomic.Uint64 // most recently begun build
}

func NewDocumentState() *DocumentState {
	return &DocumentState{}
}

// BeginBuild registers a new build and returns its sequence number. Any
// build begun earlier becomes superseded and will fail to publish.
func (s *DocumentState) BeginBuild() uint64 {
	return s.latest.Add(1)
}

// Publish atomically replaces the active index. It refuses builds that
// were superseded by a newer BeginBuild, returning false; the caller
// discards the result and reports it, never merging two builds.
func (s *DocumentState) Publish(idx *Index, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latest.Load() {
		return false
	}
	s.active.Store(idx)
	return true
}

// Current returns the active index, or nil in the Empty state.
func (s *DocumentState) Current() *Index {
	return s.active.Load()
}

// CurrentDocument returns the active document, or nil in the Empty state.
func (s *DocumentState) CurrentDocument() *models.Document {
	idx := s.active.Load()
	if idx == nil {
		return nil
	}
	doc := idx.Document
	return &doc
}
