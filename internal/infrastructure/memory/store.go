// Package memory is a process-local store used for development and tests.
// It applies the same grouping, join and ordering rules as the database
// backends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]*entity.User
	communities map[string]*entity.Community
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*entity.User),
		communities: make(map[string]*entity.Community),
	}
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }
func (s *Store) Communities() *CommunityRepository { return &CommunityRepository{s: s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = entity.NewID()
	r.s.users[u.ID] = u.Clone()
	return nil
}

func (r *UserRepository) Replace(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u.Clone()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) ListWithPoints(ctx context.Context) ([]entity.UserWithPoints, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.UserWithPoints, 0, len(r.s.users))
	for _, u := range r.s.users {
		if len(u.ExperiencePoints) == 0 {
			continue
		}
		row := entity.UserWithPoints{
			ID:              u.ID,
			Email:           u.Email,
			ProfilePicture:  u.ProfilePicture,
			TotalExperience: u.TotalExperience(),
		}
		if c, ok := r.s.communities[u.CommunityID]; ok {
			row.Community = c.Clone()
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type CommunityRepository struct {
	s *Store
}

// nameTaken must be called with the lock held.
func (r *CommunityRepository) nameTaken(name, exceptID string) bool {
	for id, c := range r.s.communities {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (r *CommunityRepository) Create(ctx context.Context, c *entity.Community) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(c.Name, "") {
		return repository.ErrDuplicate
	}
	c.ID = entity.NewID()
	r.s.communities[c.ID] = c.Clone()
	return nil
}

func (r *CommunityRepository) Replace(ctx context.Context, c *entity.Community) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(c.Name, c.ID) {
		return repository.ErrDuplicate
	}
	r.s.communities[c.ID] = c.Clone()
	return nil
}

func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.communities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *CommunityRepository) List(ctx context.Context) ([]entity.Community, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Community, 0, len(r.s.communities))
	for _, c := range r.s.communities {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CommunityRepository) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type group struct{ total, users int }
	groups := make(map[string]*group)
	for _, u := range r.s.users {
		// users without awards or without a community contribute nothing
		if len(u.ExperiencePoints) == 0 || u.CommunityID == "" {
			continue
		}
		g, ok := groups[u.CommunityID]
		if !ok {
			g = &group{}
			groups[u.CommunityID] = g
		}
		g.total += u.TotalExperience()
		g.users++
	}

	out := make([]entity.LeaderboardEntry, 0, len(groups))
	for id, g := range groups {
		c, ok := r.s.communities[id]
		if !ok {
			continue
		}
		out = append(out, entity.LeaderboardEntry{
			CommunityID: c.ID,
			TotalPoints: g.total,
			Logo:        c.Logo,
			Name:        c.Name,
			UserCount:   g.users,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].CommunityID < out[j].CommunityID
	})
	return out, nil
}

var (
	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.CommunityRepository = (*CommunityRepository)(nil)
)
