package application

import (
	"context"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	repo "github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

var (
	membershipJoins  = expvar.NewInt("membership_joins")
	membershipLeaves = expvar.NewInt("membership_leaves")
)

// EventPublisher puts a JSON message on a queue. *helpers.RabbitPublisher
// satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// MembershipService moves users between Unaffiliated and Member(community).
// There is no direct switch: a member has to Leave before joining another
// community. Concurrent transitions on one user are last-write-wins.
type MembershipService struct {
	Users       repo.UserRepository
	Communities repo.CommunityRepository
	Cache       *LeaderboardCache
	Events      EventPublisher
	Logger      *logrus.Logger
	Now         func() time.Time
}

func NewMembershipService(users repo.UserRepository, communities repo.CommunityRepository, cache *LeaderboardCache, events EventPublisher, logger *logrus.Logger) *MembershipService {
	return &MembershipService{
		Users:       users,
		Communities: communities,
		Cache:       cache,
		Events:      events,
		Logger:      logger,
		Now:         time.Now,
	}
}

// Join makes an unaffiliated user a member of communityID.
func (s *MembershipService) Join(ctx context.Context, userID, communityID string) error {
	if !entity.ValidIDs(userID, communityID) {
		return ErrInvalidIdentifier
	}

	users := NewUserAccessor(s.Users, s.Communities)
	if err := users.LoadByID(ctx, userID); err != nil {
		return err
	}
	u, _ := users.Object()
	if u.HasCommunity() {
		return ErrAlreadyInCommunity
	}

	communities := NewCommunityAccessor(s.Communities)
	if err := communities.LoadByID(ctx, communityID); err != nil {
		return err
	}
	c, _ := communities.Object()

	if err := users.SetCommunity(c.ID); err != nil {
		return err
	}
	if err := users.Save(ctx); err != nil {
		return err
	}

	membershipJoins.Add(1)
	s.afterTransition(ctx, entity.MembershipEvent{
		Type:          entity.MembershipJoined,
		UserID:        u.ID,
		Email:         u.Email,
		CommunityID:   c.ID,
		CommunityName: c.Name,
	})
	return nil
}

// Leave clears the user's community.
func (s *MembershipService) Leave(ctx context.Context, userID string) error {
	if !entity.ValidIDs(userID) {
		return ErrInvalidIdentifier
	}

	users := NewUserAccessor(s.Users, s.Communities)
	if err := users.LoadByID(ctx, userID); err != nil {
		return err
	}
	u, _ := users.Object()
	if !u.HasCommunity() {
		return ErrNotInCommunity
	}

	if err := users.ClearCommunity(); err != nil {
		return err
	}
	if err := users.Save(ctx); err != nil {
		return err
	}

	membershipLeaves.Add(1)
	ev := entity.MembershipEvent{
		Type:        entity.MembershipLeft,
		UserID:      u.ID,
		Email:       u.Email,
		CommunityID: u.CommunityID,
	}
	if c, err := s.Communities.GetByID(ctx, u.CommunityID); err == nil {
		ev.CommunityName = c.Name
	}
	s.afterTransition(ctx, ev)
	return nil
}

// afterTransition runs the side effects of a committed transition. Failures
// are logged only.
func (s *MembershipService) afterTransition(ctx context.Context, ev entity.MembershipEvent) {
	s.Cache.Invalidate(ctx)

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"event":        ev.Type,
			"user_id":      ev.UserID,
			"community_id": ev.CommunityID,
		}).Info("membership changed")
	}

	if s.Events == nil {
		return
	}
	ev.OccurredAt = s.Now().UTC()
	if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", ev.Type).Warn("publish membership event failed")
	}
}
