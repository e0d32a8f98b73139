// Package rediscache is a read-through cache for grading results keyed
// by conversation id. It only shortens the happy path of repeated grade
// lookups; the database unique index stays the source of truth, so a
// cold or absent cache is always safe.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/types"
)

type GradeCache struct {
	log *logger.Logger
	rdb *redis.Client
	ttl time.Duration
}

func New(log *logger.Logger, addr string, ttl time.Duration) (*GradeCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &GradeCache{
		log: log.With("client", "GradeCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func key(conversationID string) string {
	return "grade:" + conversationID
}

// Get returns (nil, nil) on a miss. Cache failures are logged and
// reported as misses so grading never depends on redis being up.
func (c *GradeCache) Get(ctx context.Context, conversationID string) (*types.GradingResult, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, key(conversationID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Grade cache read failed", "conversation_id", conversationID, "error", err)
		}
		return nil, nil
	}
	var result types.GradingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.log.Warn("Grade cache entry corrupt, dropping", "conversation_id", conversationID, "error", err)
		_ = c.rdb.Del(ctx, key(conversationID)).Err()
		return nil, nil
	}
	return &result, nil
}

func (c *GradeCache) Set(ctx context.Context, conversationID string, result *types.GradingResult) {
	if c == nil || result == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("Grade cache encode failed", "conversation_id", conversationID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key(conversationID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Grade cache write failed", "conversation_id", conversationID, "error", err)
	}
}
