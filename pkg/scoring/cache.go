package scoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/redis_client"
)

const cacheKey = "safety-score"

// ScoreCache keeps the latest rollup in Redis for a short TTL; any cache
// failure just means recomputing.
type ScoreCache struct {
	Cache *cache.Cache[string]
}

func (c *ScoreCache) Setup() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(5*time.Minute))

	c.Cache = cache.New[string](redisStore)
}

func (c *ScoreCache) Get(ctx context.Context) *Score {
	scoreCacheValue, err := c.Cache.Get(ctx, cacheKey)
	if err != nil {
		return nil
	}

	var score *Score
	if err := json.Unmarshal([]byte(scoreCacheValue), &score); err != nil {
		return nil
	}
	return score
}

func (c *ScoreCache) Set(ctx context.Context, score *Score) {
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return
	}

	if err := c.Cache.Set(ctx, cacheKey, string(scoreJSON)); err != nil {
		log.Warn().Err(err).Msg("Failed to cache safety score")
	}
}
