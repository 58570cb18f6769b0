package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
	"github.com/oksasatya/go-community-leaderboard/internal/infrastructure/memory"
	"github.com/oksasatya/go-community-leaderboard/internal/testutil"
)

func TestMemoryRepositories(t *testing.T) {
	testutil.RunRepositoryContract(t, func(t *testing.T) (repository.UserRepository, repository.CommunityRepository) {
		s := memory.NewStore()
		return s.Users(), s.Communities()
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := memory.NewStore()
	users := s.Users()
	ctx := context.Background()

	u := testutil.NewUserBuilder().WithPoints(1).Build()
	require.NoError(t, users.Create(ctx, u))

	u.ExperiencePoints[0].Points = 50
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalExperience())

	got.ExperiencePoints[0].Points = 70
	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.TotalExperience())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Communities().Leaderboard(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
