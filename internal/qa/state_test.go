package qa

import (
	"sync"
	"testing"

	"pdf-qa-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStateEmpty(t *testing.T) {
	s := NewDocumentState()
	assert.Nil(t, s.Current())
	assert.Nil(t, s.CurrentDocument())
}

func TestDocumentStatePublishAndReplace(t *testing.T) {
	s := NewDocumentState()

	first := testIndex()
	first.Document.ID = "doc-a"
	seq := s.BeginBuild()
	require.True(t, s.Publish(first, seq))
	assert.Equal(t, "doc-a", s.Current().Document.ID)

	second := testIndex()
	second.Document.ID = "doc-b"
	seq = s.BeginBuild()
	require.True(t, s.Publish(second, seq))
	assert.Equal(t, "doc-b", s.Current().Document.ID, "newer publish must replace the whole pair")
}

func TestDocumentStateRefusesSupersededBuild(t *testing.T) {
	s := NewDocumentState()

	older := s.BeginBuild()
	newer := s.BeginBuild()

	stale := testIndex()
	stale.Document.ID = "stale"
	assert.False(t, s.Publish(stale, older), "superseded build must not publish")
	assert.Nil(t, s.Current(), "refused publish must leave state untouched")

	current := testIndex()
	current.Document.ID = "current"
	require.True(t, s.Publish(current, newer))
	assert.Equal(t, "current", s.Current().Document.ID)

	// Even after a successful publish, the stale build stays refused.
	assert.False(t, s.Publish(stale, older))
	assert.Equal(t, "current", s.Current().Document.ID)
}

func TestCurrentDocumentReturnsCopy(t *testing.T) {
	s := NewDocumentState()
	idx := testIndex()
	idx.Document = models.Document{ID: "doc-a", Filename: "a.pdf"}
	require.True(t, s.Publish(idx, s.BeginBuild()))

	doc := s.CurrentDocument()
	require.NotNil(t, doc)
	doc.Filename = "mutated.pdf"
	assert.Equal(t, "a.pdf", s.CurrentDocument().Filename)
}

func TestDocumentStateConcurrentReadsDuringPublish(t *testing.T) {
	s := NewDocumentState()
	base := testIndex()
	base.Document.ID = "doc-0"
	require.True(t, s.Publish(base, s.BeginBuild()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if idx := s.Current(); idx != nil {
					// A snapshot is internally consistent: entries always
					// belong to the snapshot's own document.
					for _, e := range idx.Entries {
						assert.Equal(t, idx.Document.ID, e.Chunk.DocumentID)
					}
				}
			}
		}()
	}

	for i := 1; i <= 50; i++ {
		idx := testIndex(Entry{
			Chunk:  models.Chunk{DocumentID: "doc-n", Seq: 0, Text: "t"},
			Vector: models.Vector{1},
		})
		idx.Document.ID = "doc-n"
		require.True(t, s.Publish(idx, s.BeginBuild()))
	}
	wg.Wait()
}
