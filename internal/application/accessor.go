package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	repo "github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

// UserAccessor holds at most one user aggregate and mediates its
// construction, mutation, persistence and lookup. It is not safe for
// concurrent use; create one per operation.
type UserAccessor struct {
	users       repo.UserRepository
	communities repo.CommunityRepository

	user  *entity.User
	isNew bool
}

func NewUserAccessor(users repo.UserRepository, communities repo.CommunityRepository) *UserAccessor {
	return &UserAccessor{users: users, communities: communities}
}

// Construct holds a fresh, unsaved user built from data. Any id in data is
// ignored; the store assigns one on Save.
func (a *UserAccessor) Construct(data entity.User) *UserAccessor {
	u := data.Clone()
	u.ID = ""
	a.user = u
	a.isNew = true
	return a
}

func (a *UserAccessor) SetEmail(email string) error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	a.user.Email = email
	return nil
}

func (a *UserAccessor) SetPasswordHash(hash string) error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	a.user.PasswordHash = hash
	return nil
}

func (a *UserAccessor) SetProfilePicture(url string) error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	a.user.ProfilePicture = url
	return nil
}

func (a *UserAccessor) SetCommunity(communityID string) error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	a.user.CommunityID = communityID
	return nil
}

func (a *UserAccessor) ClearCommunity() error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	a.user.CommunityID = ""
	return nil
}

// AddExperience appends one award. Earlier awards are never touched.
func (a *UserAccessor) AddExperience(points int, at time.Time) error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	a.user.ExperiencePoints = append(a.user.ExperiencePoints, entity.ExperiencePoint{Points: points, Timestamp: at.UTC()})
	return nil
}

// Save inserts a constructed user or replaces a loaded one.
func (a *UserAccessor) Save(ctx context.Context) error {
	if a.user == nil {
		return ErrUninitializedAggregate
	}
	if err := a.user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAggregate, err)
	}
	var err error
	if a.isNew {
		err = a.users.Create(ctx, a.user)
	} else {
		err = a.users.Replace(ctx, a.user)
	}
	if err != nil {
		return storageFailure(err)
	}
	a.isNew = false
	return nil
}

// LoadByID replaces the held user with the stored one. Malformed ids are
// rejected without touching the store.
func (a *UserAccessor) LoadByID(ctx context.Context, id string) error {
	if !entity.ValidIDs(id) {
		return ErrInvalidIdentifier
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageFailure(err)
	}
	a.user = u
	a.isNew = false
	return nil
}

// Populate resolves the community reference. A dangling reference resolves
// to nil.
func (a *UserAccessor) Populate(ctx context.Context) (*entity.PopulatedUser, error) {
	if a.user == nil {
		return nil, ErrUninitializedAggregate
	}
	u := a.user.Clone()
	out := &entity.PopulatedUser{
		ID:               u.ID,
		Email:            u.Email,
		ProfilePicture:   u.ProfilePicture,
		ExperiencePoints: u.ExperiencePoints,
	}
	if !u.HasCommunity() {
		return out, nil
	}
	c, err := a.communities.GetByID(ctx, u.CommunityID)
	switch {
	case err == nil:
		out.Community = c
	case errors.Is(err, repo.ErrNotFound):
	default:
		return nil, storageFailure(err)
	}
	return out, nil
}

// Object returns a copy of the held user.
func (a *UserAccessor) Object() (*entity.User, error) {
	if a.user == nil {
		return nil, ErrUninitializedAggregate
	}
	return a.user.Clone(), nil
}

// CommunityAccessor is the community counterpart of UserAccessor.
type CommunityAccessor struct {
	communities repo.CommunityRepository

	community *entity.Community
	isNew     bool
}

func NewCommunityAccessor(communities repo.CommunityRepository) *CommunityAccessor {
	return &CommunityAccessor{communities: communities}
}

func (a *CommunityAccessor) Construct(data entity.Community) *CommunityAccessor {
	c := data.Clone()
	c.ID = ""
	a.community = c
	a.isNew = true
	return a
}

func (a *CommunityAccessor) SetName(name string) error {
	if a.community == nil {
		return ErrUninitializedAggregate
	}
	a.community.Name = name
	return nil
}

func (a *CommunityAccessor) SetLogo(url string) error {
	if a.community == nil {
		return ErrUninitializedAggregate
	}
	a.community.Logo = url
	return nil
}

func (a *CommunityAccessor) Save(ctx context.Context) error {
	if a.community == nil {
		return ErrUninitializedAggregate
	}
	if err := a.community.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAggregate, err)
	}
	var err error
	if a.isNew {
		err = a.communities.Create(ctx, a.community)
	} else {
		err = a.communities.Replace(ctx, a.community)
	}
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateName
		}
		return storageFailure(err)
	}
	a.isNew = false
	return nil
}

func (a *CommunityAccessor) LoadByID(ctx context.Context, id string) error {
	if !entity.ValidIDs(id) {
		return ErrInvalidIdentifier
	}
	c, err := a.communities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCommunityNotFound
		}
		return storageFailure(err)
	}
	a.community = c
	a.isNew = false
	return nil
}

// Populate returns the community itself; it holds no references.
func (a *CommunityAccessor) Populate(context.Context) (*entity.Community, error) {
	return a.Object()
}

func (a *CommunityAccessor) Object() (*entity.Community, error) {
	if a.community == nil {
		return nil, ErrUninitializedAggregate
	}
	return a.community.Clone(), nil
}
