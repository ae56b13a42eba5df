package qa

import (
	"strings"
	"testing"

	"pdf-qa-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerEmptyInput(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{})

	for _, text := range []string{"", "   ", "\n\n\t  \n"} {
		chunks, err := c.Chunk(text)
		require.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, chunks)
	}
}

func TestChunkerSmallTextSingleChunk(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 1000, Overlap: 200})

	chunks, err := c.Chunk("The sky is blue. Water boils at 100 degrees Celsius.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Seq)
	assert.Equal(t, 0, chunks[0].Overlap)
	assert.Contains(t, chunks[0].Text, "sky is blue")
	assert.Contains(t, chunks[0].Text, "100 degrees")
}

func TestChunkerDeterministic(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 120, Overlap: 30, MinChunkSize: 40})
	text := strings.Repeat("One sentence here. Another sentence follows it. ", 20) +
		"\n\n" + strings.Repeat("A second paragraph with more words in it. ", 15)

	first, err := c.Chunk(text)
	require.NoError(t, err)
	second, err := c.Chunk(text)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "chunk %d differs between runs", i)
	}
}

func TestChunkerSequentialSeqAndSize(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 100, Overlap: 0, MinChunkSize: 20})
	text := strings.Repeat("Short sentence number one. Short sentence number two. ", 12)

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Seq)
		assert.LessOrEqual(t, len(ch.Text), 100+27, "chunk %d far exceeds target", i)
		assert.NotEmpty(t, strings.TrimSpace(ch.Text))
	}
}

func TestChunkerParagraphBoundariesPreferred(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 60, Overlap: 0, MinChunkSize: 10})
	text := "First paragraph stands alone right here.\n\n" +
		"Second paragraph is also fairly small.\n\n" +
		"Third paragraph closes out the document."

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[0].Text, "First paragraph")
	assert.Contains(t, chunks[1].Text, "Second paragraph")
	assert.Contains(t, chunks[2].Text, "Third paragraph")
}

func TestChunkerOverlapCarriedForward(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 80, Overlap: 25, MinChunkSize: 20})
	text := strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 10)

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 0, chunks[0].Overlap)
	for i := 1; i < len(chunks); i++ {
		ch := chunks[i]
		require.Greater(t, ch.Overlap, 0, "chunk %d should carry overlap", i)
		require.LessOrEqual(t, ch.Overlap, len(ch.Text))
		carried := ch.Text[:ch.Overlap]
		assert.True(t, strings.HasSuffix(chunks[i-1].Text, carried),
			"chunk %d overlap %q is not the tail of its predecessor", i, carried)
	}
}

func TestChunkerFixedWidthFallback(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 100, Overlap: 0, MinChunkSize: 20})
	// No sentence or paragraph boundaries at all.
	text := strings.Repeat("x", 350)

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)

	total := 0
	for i, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Text), 101, "chunk %d exceeds target", i)
		total += len(strings.ReplaceAll(ch.Text, " ", ""))
	}
	assert.Equal(t, 350, total, "fixed-width slicing must not lose text")
}

func TestChunkerOverlapCappedBelowTarget(t *testing.T) {
	c := NewChunker(models.ChunkingConfig{TargetChunkSize: 100, Overlap: 500})
	assert.Less(t, c.overlap, c.targetSize)
}
