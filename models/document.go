package models

import (
	"time"
)

// Document is the unit of upload. A new upload supersedes the previous
// document entirely; documents are immutable once created.
type Document struct {
	ID         string    `bson:"_id" json:"id"`
	Filename   string    `bson:"filename" json:"filename"`
	Text       string    `bson:"text" json:"-"`
	TextLength int       `bson:"text_length" json:"text_length"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Chunk is a contiguous span of document text sized for embedding.
// Identity is (DocumentID, Seq); chunks are never mutated after creation.
type Chunk struct {
	DocumentID string `bson:"document_id" json:"document_id"`
	Seq        int    `bson:"seq" json:"seq"`
	Text       string `bson:"text" json:"text"`
	Overlap    int    `bson:"overlap,omitempty" json:"overlap,omitempty"` // chars shared with the previous chunk
}

// Vector is the fixed-dimension embedding associated 1:1 with a chunk.
type Vector = []float32

// ScoredChunk is a retrieval result. Score is in [0,1], 1.0 = identical.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// QueryRecord is one entry of the append-only question log. Failed
// attempts are recorded too, with a nil answer and the failure kind.
type QueryRecord struct {
	ID          string    `bson:"_id" json:"id"`
	DocumentID  string    `bson:"document_id" json:"document_id"`
	Question    string    `bson:"question" json:"question"`
	Answer      *string   `bson:"answer" json:"answer"`
	Confidence  *float64  `bson:"confidence,omitempty" json:"confidence,omitempty"`
	FailureKind string    `bson:"failure_kind,omitempty" json:"failure_kind,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// UploadResponse is returned after a successful upload and index build.
type UploadResponse struct {
	DocumentID   string        `json:"document_id"`
	Filename     string        `json:"filename"`
	ChunkCount   int           `json:"chunk_count"`
	TextLength   int           `json:"text_length"`
	IndexBuild   time.Duration `json:"-"`
	IndexBuildMS int64         `json:"index_build_ms"`
	Message      string        `json:"message,omitempty"`
}

// AnswerResponse is returned for an answered question.
type AnswerResponse struct {
	Answer       string  `json:"answer"`
	Confidence   float64 `json:"confidence"`
	DocumentName string  `json:"document_name"`
	Cached       bool    `json:"cached,omitempty"`
}

// ChunkingConfig defines how document text is chunked.
type ChunkingConfig struct {
	TargetChunkSize int `json:"target_chunk_size"`
	Overlap         int `json:"overlap"`
	MinChunkSize    int `json:"min_chunk_size"`
}
