package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"clipvault/internal/domain/model"
)

// AnswerCache keeps recent query answers in Redis with a TTL. Retrieval
// performs no database writes, so this cache is the only retrieval-side
// state; it can be flushed at any time without correctness impact.
type AnswerCache struct {
	cli *redis.Client
	ttl time.Duration
}

func NewAnswerCache(cli *redis.Client, ttl time.Duration) *AnswerCache {
	return &AnswerCache{cli: cli, ttl: ttl}
}

func (c *AnswerCache) key(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "clipvault:answer:" + hex.EncodeToString(sum[:])
}

// Get returns the cached answer or nil on miss. Decode failures count as
// misses; the entry is overwritten on the next Set.
func (c *AnswerCache) Get(ctx context.Context, query string) (*model.Answer, error) {
	raw, err := c.cli.Get(ctx, c.key(query)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var ans model.Answer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		return nil, nil
	}
	return &ans, nil
}

func (c *AnswerCache) Set(ctx context.Context, query string, ans *model.Answer) error {
	b, err := json.Marshal(ans)
	if err != nil {
		return err
	}
	return c.cli.Set(ctx, c.key(query), b, c.ttl).Err()
}
