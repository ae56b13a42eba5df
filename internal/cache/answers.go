package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"pdf-qa-backend/internal/logger"
	"pdf-qa-backend/models"

	"github.com/redis/go-redis/v9"
)

// AnswerCache stores answered questions per document in Redis. A cache
// miss or a Redis failure both fall through to the pipeline; the cache
// never affects correctness.
type AnswerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAnswerCache(rdb *redis.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{rdb: rdb, ttl: ttl}
}

func (c *AnswerCache) Get(ctx context.Context, documentID, question string) (*models.AnswerResponse, bool) {
	val, err := c.rdb.Get(ctx, key(documentID, question)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("answer cache get failed", "error", err)
		}
		return nil, false
	}
	var ans models.AnswerResponse
	if err := json.Unmarshal([]byte(val), &ans); err != nil {
		logger.Warn("answer cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return &ans, true
}

func (c *AnswerCache) Set(ctx context.Context, documentID, question string, ans *models.AnswerResponse) {
	data, err := json.Marshal(ans)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(documentID, question), data, c.ttl).Err(); err != nil {
		logger.Warn("answer cache set failed", "error", err)
	}
}

// key hashes (document, question) so arbitrary question text never leaks
// into key space limits.
func key(documentID, question string) string {
	sum := sha256.Sum256([]byte(documentID + "|" + question))
	return "answer:" + hex.EncodeToString(sum[:])
}
