package application_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
	"github.com/oksasatya/go-community-leaderboard/internal/infrastructure/memory"
)

// countingUsers records every call that reaches the store.
type countingUsers struct {
	repository.UserRepository
	mu    sync.Mutex
	calls int
}

func (c *countingUsers) hit() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	c.hit()
	return c.UserRepository.GetByID(ctx, id)
}

func (c *countingUsers) Replace(ctx context.Context, u *entity.User) error {
	c.hit()
	return c.UserRepository.Replace(ctx, u)
}

func (c *countingUsers) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type countingCommunities struct {
	repository.CommunityRepository
	calls int
}

func (c *countingCommunities) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	c.calls++
	return c.CommunityRepository.GetByID(ctx, id)
}

func (c *countingCommunities) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	c.calls++
	return c.CommunityRepository.Leaderboard(ctx)
}

type recordingPublisher struct {
	events []entity.MembershipEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	if ev, ok := body.(entity.MembershipEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

type fakeUploader struct {
	paths []string
	body  []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	f.body = append(f.body, string(b))
	return "https://cdn.test/" + objectPath, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	store       *memory.Store
	users       *countingUsers
	communities *countingCommunities
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	return &fixture{
		store:       s,
		users:       &countingUsers{UserRepository: s.Users()},
		communities: &countingCommunities{CommunityRepository: s.Communities()},
	}
}

func (f *fixture) community(t *testing.T, name string) *entity.Community {
	t.Helper()
	c := &entity.Community{Name: name, Logo: "https://cdn.test/" + name + ".png"}
	require.NoError(t, f.store.Communities().Create(context.Background(), c))
	return c
}

func (f *fixture) user(t *testing.T, u *entity.User) *entity.User {
	t.Helper()
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}
