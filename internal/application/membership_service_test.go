package application_test

import (
	"context"
	"expvar"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/internal/application"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/testutil"
)

func newMembership(f *fixture, pub application.EventPublisher) *application.MembershipService {
	logger, _ := test.NewNullLogger()
	s := application.NewMembershipService(f.users, f.communities, nil, pub, logger)
	s.Now = func() time.Time { return testutil.Epoch }
	return s
}

func counter(name string) int64 {
	return expvar.Get(name).(*expvar.Int).Value()
}

func TestMembershipService_JoinLeaveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newMembership(f, pub)

	c := f.community(t, "Gophers")
	u := f.user(t, testutil.NewUserBuilder().WithEmail("ana@example.com").WithPoints(10).Build())
	joinsBefore, leavesBefore := counter("membership_joins"), counter("membership_leaves")

	require.NoError(t, svc.Join(ctx, u.ID, c.ID))
	got, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.CommunityID)

	err = svc.Join(ctx, u.ID, c.ID)
	assert.ErrorIs(t, err, application.ErrAlreadyInCommunity)
	got, err = f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.CommunityID)

	require.NoError(t, svc.Leave(ctx, u.ID))
	got, err = f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.HasCommunity())
	assert.Equal(t, 10, got.TotalExperience())

	assert.ErrorIs(t, svc.Leave(ctx, u.ID), application.ErrNotInCommunity)

	assert.Equal(t, joinsBefore+1, counter("membership_joins"))
	assert.Equal(t, leavesBefore+1, counter("membership_leaves"))

	require.Len(t, pub.events, 2)
	assert.Equal(t, entity.MembershipEvent{
		Type:          entity.MembershipJoined,
		UserID:        u.ID,
		Email:         "ana@example.com",
		CommunityID:   c.ID,
		CommunityName: "Gophers",
		OccurredAt:    testutil.Epoch,
	}, pub.events[0])
	assert.Equal(t, entity.MembershipLeft, pub.events[1].Type)
	assert.Equal(t, c.ID, pub.events[1].CommunityID)
	assert.Equal(t, "Gophers", pub.events[1].CommunityName)
}

func TestMembershipService_NoDirectSwitch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newMembership(f, nil)

	a, b := f.community(t, "A"), f.community(t, "B")
	u := f.user(t, testutil.NewUserBuilder().WithCommunity(a.ID).Build())

	assert.ErrorIs(t, svc.Join(ctx, u.ID, b.ID), application.ErrAlreadyInCommunity)

	require.NoError(t, svc.Leave(ctx, u.ID))
	require.NoError(t, svc.Join(ctx, u.ID, b.ID))
	got, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.CommunityID)
}

func TestMembershipService_JoinErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newMembership(f, nil)

	c := f.community(t, "Gophers")
	u := f.user(t, testutil.NewUserBuilder().Build())
	member := f.user(t, testutil.NewUserBuilder().WithCommunity(c.ID).Build())

	tests := []struct {
		name        string
		userID      string
		communityID string
		want        error
	}{
		{"invalid user id", "not-an-id", c.ID, application.ErrInvalidIdentifier},
		{"invalid community id", u.ID, "nope", application.ErrInvalidIdentifier},
		{"missing user", entity.NewID(), c.ID, application.ErrUserNotFound},
		{"missing community", u.ID, entity.NewID(), application.ErrCommunityNotFound},
		{"already a member is checked before the community", member.ID, entity.NewID(), application.ErrAlreadyInCommunity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Join(ctx, tt.userID, tt.communityID), tt.want)
		})
	}

	got, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.HasCommunity())
}

func TestMembershipService_InvalidIDsSkipStorage(t *testing.T) {
	f := newFixture(t)
	svc := newMembership(f, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Join(ctx, "not-an-id", "also-not"), application.ErrInvalidIdentifier)
	assert.ErrorIs(t, svc.Leave(ctx, "not-an-id"), application.ErrInvalidIdentifier)
	assert.Zero(t, f.users.Calls())
	assert.Zero(t, f.communities.calls)
}

func TestMembershipService_LeaveErrors(t *testing.T) {
	f := newFixture(t)
	svc := newMembership(f, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Leave(ctx, entity.NewID()), application.ErrUserNotFound)

	u := f.user(t, testutil.NewUserBuilder().Build())
	assert.ErrorIs(t, svc.Leave(ctx, u.ID), application.ErrNotInCommunity)
}

func TestMembershipService_PublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	pub := &recordingPublisher{err: errBoom}
	svc := application.NewMembershipService(f.users, f.communities, nil, pub, logger)

	c := f.community(t, "Gophers")
	u := f.user(t, testutil.NewUserBuilder().Build())

	require.NoError(t, svc.Join(ctx, u.ID, c.ID))
	require.Len(t, pub.events, 1)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "publish membership event failed" {
			warned = true
		}
	}
	assert.True(t, warned)
}
