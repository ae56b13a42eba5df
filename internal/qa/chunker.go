package qa

import (
	"regexp"
	"strings"

	"pdf-qa-backend/models"
)

// Chunker splits extracted document text into overlapping passages sized
// for embedding. Splitting prefers paragraph boundaries, then sentence
// boundaries, and falls back to fixed-width slicing for pathological
// inputs. Chunking is deterministic: the same text and parameters always
// yield the same ordered sequence.
type Chunker struct {
	targetSize  int
	overlap     int
	minSize     int
	sentenceRe  *regexp.Regexp
	paragraphRe *regexp.Regexp
}

// NewChunker creates a chunker. Zero or invalid parameters fall back to
// defaults; overlap is capped below the target size.
func NewChunker(cfg models.ChunkingConfig) *Chunker {
	target := cfg.TargetChunkSize
	if target <= 0 {
		target = 1000
	}
	overlap := cfg.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= target {
		overlap = target / 4
	}
	minSize := cfg.MinChunkSize
	if minSize <= 0 || minSize > target {
		minSize = target / 5
	}
	return &Chunker{
		targetSize:  target,
		overlap:     overlap,
		minSize:     minSize,
		sentenceRe:  regexp.MustCompile(`(?s)[^.!?]+[.!?]+|[^.!?]+`),
		paragraphRe: regexp.MustCompile(`\n\n+`),
	}
}

// segment is a splittable unit plus the separator that preceded it in the
// source text.
type segment struct {
	text string
	sep  string
}

// Chunk splits text into ordered chunks. The returned chunks carry no
// document identity yet; the index builder stamps it.
func (c *Chunker) Chunk(text string) ([]models.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	segs := c.segments(text)

	var chunks []models.Chunk
	b := new(strings.Builder)
	overlapLen := 0
	fresh := true // nothing appended since the last flush

	flush := func() {
		chunks = append(chunks, models.Chunk{
			Seq:     len(chunks),
			Text:    b.String(),
			Overlap: overlapLen,
		})
		tail := c.overlapTail(b.String())
		b.Reset()
		b.WriteString(tail)
		overlapLen = len(tail)
		fresh = true
	}

	for _, s := range segs {
		if !fresh && b.Len()+len(s.sep)+len(s.text) > c.targetSize && b.Len() >= c.minSize {
			flush()
		}
		if b.Len() > 0 {
			b.WriteString(s.sep)
		}
		b.WriteString(s.text)
		fresh = false
	}
	if !fresh {
		chunks = append(chunks, models.Chunk{
			Seq:     len(chunks),
			Text:    b.String(),
			Overlap: overlapLen,
		})
	}

	return chunks, nil
}

// segments splits text into paragraph- and sentence-level units, slicing
// any unit still larger than the target size into fixed-width pieces.
func (c *Chunker) segments(text string) []segment {
	var segs []segment
	add := func(unit, sep string) {
		if len(segs) == 0 {
			sep = ""
		}
		for i, piece := range c.fixedWidth(unit) {
			if i > 0 {
				sep = " "
			}
			segs = append(segs, segment{text: piece, sep: sep})
		}
	}

	for _, para := range c.paragraphRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= c.targetSize {
			add(para, "\n\n")
			continue
		}
		sep := "\n\n"
		for _, sentence := range c.sentenceRe.FindAllString(para, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			add(sentence, sep)
			sep = " "
		}
	}
	return segs
}

// fixedWidth slices a unit into pieces no larger than the target size,
// splitting on rune boundaries.
func (c *Chunker) fixedWidth(unit string) []string {
	if len(unit) <= c.targetSize {
		return []string{unit}
	}
	var pieces []string
	runes := []rune(unit)
	cur := new(strings.Builder)
	for _, r := range runes {
		if cur.Len()+len(string(r)) > c.targetSize {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

// overlapTail returns the trailing context a new chunk inherits from the
// previous one, snapped to a word boundary when one exists.
func (c *Chunker) overlapTail(text string) string {
	if c.overlap == 0 {
		return ""
	}
	if len(text) <= c.overlap {
		return text
	}
	runes := []rune(text)
	start := len(runes)
	size := 0
	for start > 0 && size < c.overlap {
		start--
		size += len(string(runes[start]))
	}
	tail := string(runes[start:])
	if i := strings.IndexByte(tail, ' '); i >= 0 && i+1 < len(tail) {
		tail = tail[i+1:]
	}
	return tail
}
