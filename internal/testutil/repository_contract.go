package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

// RepoFactory returns repositories over an empty store.
type RepoFactory func(t *testing.T) (repository.UserRepository, repository.CommunityRepository)

// RunRepositoryContract exercises behaviour every storage backend must share.
func RunRepositoryContract(t *testing.T, newRepos RepoFactory) {
	t.Run("user round trip", func(t *testing.T) {
		users, communities := newRepos(t)
		ctx := context.Background()

		c := MustCreateCommunity(t, communities, "Gophers", "https://cdn.test/gophers.png")
		u := NewUserBuilder().WithEmail("ana@example.com").WithPicture("https://cdn.test/ana.png").
			WithCommunity(c.ID).WithPoints(10, 5, 7).Build()
		require.NoError(t, users.Create(ctx, u))
		require.True(t, entity.ValidIDs(u.ID))

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.Equal(t, u.ProfilePicture, got.ProfilePicture)
		assert.Equal(t, c.ID, got.CommunityID)
		assert.Equal(t, 22, got.TotalExperience())
		require.Len(t, got.ExperiencePoints, 3)
		for i, xp := range got.ExperiencePoints {
			assert.Equal(t, u.ExperiencePoints[i].Points, xp.Points)
			assert.True(t, u.ExperiencePoints[i].Timestamp.Equal(xp.Timestamp), "timestamp %d", i)
		}
	})

	t.Run("get missing user", func(t *testing.T) {
		users, _ := newRepos(t)
		_, err := users.GetByID(context.Background(), entity.NewID())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("replace updates and upserts", func(t *testing.T) {
		users, communities := newRepos(t)
		ctx := context.Background()
		c := MustCreateCommunity(t, communities, "Rustaceans", "")

		u := NewUserBuilder().WithPoints(1).Build()
		require.NoError(t, users.Create(ctx, u))

		u.CommunityID = c.ID
		u.ExperiencePoints = append(u.ExperiencePoints, entity.ExperiencePoint{Points: 4, Timestamp: Epoch})
		require.NoError(t, users.Replace(ctx, u))
		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.CommunityID)
		assert.Equal(t, 5, got.TotalExperience())

		u.CommunityID = ""
		require.NoError(t, users.Replace(ctx, u))
		got, err = users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, got.HasCommunity())

		fresh := NewUserBuilder().WithEmail("new@example.com").Build()
		fresh.ID = entity.NewID()
		require.NoError(t, users.Replace(ctx, fresh))
		got, err = users.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
	})

	t.Run("community names are unique", func(t *testing.T) {
		_, communities := newRepos(t)
		ctx := context.Background()
		MustCreateCommunity(t, communities, "Gophers", "")
		other := MustCreateCommunity(t, communities, "Pythonistas", "")

		err := communities.Create(ctx, &entity.Community{Name: "Gophers"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		other.Name = "Gophers"
		err = communities.Replace(ctx, other)
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		other.Name = "Pythonistas"
		other.Logo = "https://cdn.test/py.png"
		require.NoError(t, communities.Replace(ctx, other))
		got, err := communities.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/py.png", got.Logo)
	})

	t.Run("get missing community", func(t *testing.T) {
		_, communities := newRepos(t)
		_, err := communities.GetByID(context.Background(), entity.NewID())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list communities", func(t *testing.T) {
		_, communities := newRepos(t)
		MustCreateCommunity(t, communities, "A", "")
		MustCreateCommunity(t, communities, "B", "")

		list, err := communities.List(context.Background())
		require.NoError(t, err)
		names := make([]string, 0, len(list))
		for _, c := range list {
			names = append(names, c.Name)
		}
		assert.ElementsMatch(t, []string{"A", "B"}, names)
	})

	t.Run("leaderboard ranks communities", func(t *testing.T) {
		users, communities := newRepos(t)
		ctx := context.Background()
		a := MustCreateCommunity(t, communities, "A", "https://cdn.test/a.png")
		b := MustCreateCommunity(t, communities, "B", "https://cdn.test/b.png")
		MustCreateCommunity(t, communities, "C", "")

		MustCreateUser(t, users, NewUserBuilder().WithEmail("a1@x.test").WithCommunity(a.ID).WithPoints(4, 6).Build())
		MustCreateUser(t, users, NewUserBuilder().WithEmail("a2@x.test").WithCommunity(a.ID).WithPoints(20).Build())
		MustCreateUser(t, users, NewUserBuilder().WithEmail("a3@x.test").WithCommunity(a.ID).Build())
		MustCreateUser(t, users, NewUserBuilder().WithEmail("b1@x.test").WithCommunity(b.ID).WithPoints(5).Build())
		MustCreateUser(t, users, NewUserBuilder().WithEmail("solo@x.test").WithPoints(100).Build())

		rows, err := communities.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, []entity.LeaderboardEntry{
			{CommunityID: a.ID, TotalPoints: 30, Logo: a.Logo, Name: "A", UserCount: 2},
			{CommunityID: b.ID, TotalPoints: 5, Logo: b.Logo, Name: "B", UserCount: 1},
		}, rows)

		again, err := communities.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, rows, again)
	})

	t.Run("leaderboard ties break by community id", func(t *testing.T) {
		users, communities := newRepos(t)
		ids := make([]string, 0, 3)
		for i := 0; i < 3; i++ {
			c := MustCreateCommunity(t, communities, fmt.Sprintf("Tie %d", i), "")
			ids = append(ids, c.ID)
			MustCreateUser(t, users, NewUserBuilder().WithEmail(fmt.Sprintf("t%d@x.test", i)).WithCommunity(c.ID).WithPoints(7).Build())
		}

		rows, err := communities.Leaderboard(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for i := 1; i < len(rows); i++ {
			assert.Less(t, rows[i-1].CommunityID, rows[i].CommunityID)
		}
	})

	t.Run("list users with points", func(t *testing.T) {
		users, communities := newRepos(t)
		ctx := context.Background()
		c := MustCreateCommunity(t, communities, "Gophers", "https://cdn.test/g.png")

		member := MustCreateUser(t, users, NewUserBuilder().WithEmail("m@x.test").WithCommunity(c.ID).WithPoints(10, 5, 7).Build())
		loner := MustCreateUser(t, users, NewUserBuilder().WithEmail("l@x.test").WithPicture("https://cdn.test/l.png").WithPoints(3).Build())
		MustCreateUser(t, users, NewUserBuilder().WithEmail("idle@x.test").Build())

		rows, err := users.ListWithPoints(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byID := make(map[string]entity.UserWithPoints, len(rows))
		for _, r := range rows {
			byID[r.ID] = r
		}
		m := byID[member.ID]
		assert.Equal(t, 22, m.TotalExperience)
		assert.Equal(t, "m@x.test", m.Email)
		require.NotNil(t, m.Community)
		assert.Equal(t, entity.Community{ID: c.ID, Name: "Gophers", Logo: "https://cdn.test/g.png"}, *m.Community)

		l := byID[loner.ID]
		assert.Equal(t, 3, l.TotalExperience)
		assert.Equal(t, "https://cdn.test/l.png", l.ProfilePicture)
		assert.Nil(t, l.Community)

		again, err := users.ListWithPoints(ctx)
		require.NoError(t, err)
		assert.Equal(t, rows, again)
	})
}

func MustCreateCommunity(t *testing.T, repo repository.CommunityRepository, name, logo string) *entity.Community {
	t.Helper()
	c := &entity.Community{Name: name, Logo: logo}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func MustCreateUser(t *testing.T, repo repository.UserRepository, u *entity.User) *entity.User {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
