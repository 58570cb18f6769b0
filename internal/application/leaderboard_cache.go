package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

const leaderboardCacheKey = "leaderboard:v1"

// LeaderboardCache keeps the last computed ranking in Redis. A nil cache,
// or one without a client, is a no-op. Redis errors are logged and treated
// as misses.
type LeaderboardCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *LeaderboardCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

func (c *LeaderboardCache) Get(ctx context.Context) ([]entity.LeaderboardEntry, bool) {
	if !c.enabled() {
		return nil, false
	}
	var rows []entity.LeaderboardEntry
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, leaderboardCacheKey, &rows)
	if err != nil {
		c.warn(err, "leaderboard cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if rows == nil {
		rows = []entity.LeaderboardEntry{}
	}
	return rows, true
}

func (c *LeaderboardCache) Set(ctx context.Context, rows []entity.LeaderboardEntry) {
	if !c.enabled() {
		return
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, leaderboardCacheKey, rows, c.ttl); err != nil {
		c.warn(err, "leaderboard cache write failed")
	}
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := helpers.RedisDel(ctx, c.rdb, leaderboardCacheKey); err != nil {
		c.warn(err, "leaderboard cache invalidate failed")
	}
}

func (c *LeaderboardCache) warn(err error, msg string) {
	if c.logger != nil {
		c.logger.WithError(err).WithField("key", leaderboardCacheKey).Warn(msg)
	}
}
