package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	repo "github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

type UserService struct {
	Users       repo.UserRepository
	Communities repo.CommunityRepository
	Uploader    ObjectUploader
	Cache       *LeaderboardCache
	Logger      *logrus.Logger
	Now         func() time.Time
}

func NewUserService(users repo.UserRepository, communities repo.CommunityRepository, uploader ObjectUploader, cache *LeaderboardCache, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:       users,
		Communities: communities,
		Uploader:    uploader,
		Cache:       cache,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (s *UserService) accessor() *UserAccessor {
	return NewUserAccessor(s.Users, s.Communities)
}

type RegisterInput struct {
	Email          string
	Password       string
	ProfilePicture string
}

// Register hashes the password and stores a new, unaffiliated user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidAggregate)
	}
	hash, err := helpers.HashPassword(in.Password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAggregate, err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := s.accessor().Construct(entity.User{
		Email:            in.Email,
		PasswordHash:     hash,
		ProfilePicture:   in.ProfilePicture,
		ExperiencePoints: []entity.ExperiencePoint{},
	})
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	u, _ := a.Object()
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	return u, nil
}

// Get returns the stored user with its community left as a reference.
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	a := s.accessor()
	if err := a.LoadByID(ctx, id); err != nil {
		return nil, err
	}
	return a.Object()
}

// GetPopulated returns the user with its community resolved.
func (s *UserService) GetPopulated(ctx context.Context, id string) (*entity.PopulatedUser, error) {
	a := s.accessor()
	if err := a.LoadByID(ctx, id); err != nil {
		return nil, err
	}
	return a.Populate(ctx)
}

// ListWithPoints returns every user holding at least one award, with the
// award total and resolved community. Order is not part of the contract.
func (s *UserService) ListWithPoints(ctx context.Context) ([]entity.UserWithPoints, error) {
	rows, err := s.Users.ListWithPoints(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	if rows == nil {
		rows = []entity.UserWithPoints{}
	}
	return rows, nil
}

// AwardExperience appends an award stamped with the current time.
func (s *UserService) AwardExperience(ctx context.Context, id string, points int) (*entity.User, error) {
	if points == 0 {
		return nil, ErrInvalidPoints
	}
	a := s.accessor()
	if err := a.LoadByID(ctx, id); err != nil {
		return nil, err
	}
	if err := a.AddExperience(points, s.Now()); err != nil {
		return nil, err
	}
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return a.Object()
}

// UploadProfilePicture stores the image under avatars/<id>/ and points the
// user at it.
func (s *UserService) UploadProfilePicture(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error) {
	a := s.accessor()
	if err := a.LoadByID(ctx, id); err != nil {
		return nil, err
	}
	url, err := upload(ctx, s.Uploader, "avatars", id, r, filename, contentType)
	if err != nil {
		return nil, err
	}
	if err := a.SetProfilePicture(url); err != nil {
		return nil, err
	}
	if err := a.Save(ctx); err != nil {
		return nil, err
	}
	return a.Object()
}
