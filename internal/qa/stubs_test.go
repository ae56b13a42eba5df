package qa

import (
	"context"
	"strings"
	"sync"

	"pdf-qa-backend/models"
)

// stubCapability is a deterministic in-process stand-in for the
// embedding/generation capability.
type stubCapability struct {
	mu         sync.Mutex
	embedCalls int
	genCalls   int
	embedFn    func(text string) ([]float32, error)
	genFn      func(prompt string) (string, error)
}

func newStubCapability() *stubCapability {
	return &stubCapability{
		embedFn: func(text string) ([]float32, error) { return bagVector(text), nil },
		genFn:   echoGenerate,
	}
}

func (s *stubCapability) Embed(ctx context.Context, text string) (models.Vector, error) {
	s.mu.Lock()
	s.embedCalls++
	s.mu.Unlock()
	return s.embedFn(text)
}

func (s *stubCapability) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.genCalls++
	s.mu.Unlock()
	return s.genFn(prompt)
}

func (s *stubCapability) calls() (embeds, gens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.embedCalls, s.genCalls
}

// bagVector embeds text as keyword counts over a tiny fixed vocabulary,
// enough for similarity assertions without a model.
func bagVector(text string) []float32 {
	vocab := []string{"sky", "blue", "water", "boils", "color", "cloud", "rain", "sun"}
	vec := make([]float32, len(vocab))
	lower := strings.ToLower(text)
	for i, w := range vocab {
		vec[i] = float32(strings.Count(lower, w))
	}
	return vec
}

// echoGenerate answers with the first context sentence sharing a keyword
// with the question, imitating a grounded generation.
func echoGenerate(prompt string) (string, error) {
	stop := map[string]bool{
		"the": true, "and": true, "this": true, "that": true,
		"with": true, "from": true, "are": true, "you": true, "for": true,
	}
	question := ""
	contextPart := prompt
	if i := strings.LastIndex(prompt, "Please answer this question:"); i >= 0 {
		question = strings.ToLower(prompt[i:])
		contextPart = prompt[:i]
	}
	if j := strings.Index(contextPart, "Context 1:"); j >= 0 {
		contextPart = contextPart[j:]
	}
	for _, sentence := range strings.FieldsFunc(contextPart, func(r rune) bool { return r == '.' || r == '\n' }) {
		for _, word := range strings.Fields(strings.ToLower(sentence)) {
			word = strings.Trim(word, ".,;:!?")
			if len(word) > 2 && !stop[word] && strings.Contains(question, word) {
				return strings.TrimSpace(sentence) + ".", nil
			}
		}
	}
	return "The context does not contain the answer.", nil
}

// stubStore keeps documents and the query log in memory.
type stubStore struct {
	mu      sync.Mutex
	docs    []models.Document
	records []models.QueryRecord
}

func (s *stubStore) SaveDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, *doc)
	return nil
}

func (s *stubStore) AppendQueryRecord(ctx context.Context, rec *models.QueryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *stubStore) lastRecord() *models.QueryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return nil
	}
	rec := s.records[len(s.records)-1]
	return &rec
}

// stubCache is a map-backed AnswerCache.
type stubCache struct {
	mu      sync.Mutex
	entries map[string]models.AnswerResponse
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]models.AnswerResponse)}
}

func (c *stubCache) Get(ctx context.Context, documentID, question string) (*models.AnswerResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ans, ok := c.entries[documentID+"|"+question]
	if !ok {
		return nil, false
	}
	return &ans, true
}

func (c *stubCache) Set(ctx context.Context, documentID, question string, ans *models.AnswerResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[documentID+"|"+question] = *ans
}
