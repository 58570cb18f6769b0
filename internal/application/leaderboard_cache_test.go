package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/testutil"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)
	rdb := helpers.NewRedisClient(endpoint, "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestLeaderboardCache_NilIsNoop(t *testing.T) {
	var cache *application.LeaderboardCache
	ctx := context.Background()

	cache.Set(ctx, []entity.LeaderboardEntry{{Name: "A"}})
	cache.Invalidate(ctx)
	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	disabled := application.NewLeaderboardCache(nil, time.Minute, nil)
	disabled.Set(ctx, nil)
	_, ok = disabled.Get(ctx)
	assert.False(t, ok)
}

func TestLeaderboardCache_FailsOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rdb := helpers.NewRedisClient("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	cache := application.NewLeaderboardCache(rdb, time.Minute, logger)

	f := newFixture(t)
	c := f.community(t, "A")
	f.user(t, testutil.NewUserBuilder().WithCommunity(c.ID).WithPoints(3).Build())
	svc := application.NewCommunityService(f.communities, nil, cache, logger, nil, "")

	rows, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].TotalPoints)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestLeaderboardCache_Redis(t *testing.T) {
	rdb := newTestRedis(t)
	logger, _ := test.NewNullLogger()
	cache := application.NewLeaderboardCache(rdb, time.Minute, logger)
	ctx := context.Background()

	f := newFixture(t)
	c := f.community(t, "A")
	u := f.user(t, testutil.NewUserBuilder().WithCommunity(c.ID).WithPoints(3).Build())

	communities := application.NewCommunityService(f.communities, nil, cache, logger, nil, "")
	users := application.NewUserService(f.users, f.communities, nil, cache, logger)

	first, err := communities.Leaderboard(ctx)
	require.NoError(t, err)
	calls := f.communities.calls

	second, err := communities.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, calls, f.communities.calls, "second read is served from redis")

	ttl, err := rdb.TTL(ctx, "leaderboard:v1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = users.AwardExperience(ctx, u.ID, 4)
	require.NoError(t, err)

	third, err := communities.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, 7, third[0].TotalPoints)
}
