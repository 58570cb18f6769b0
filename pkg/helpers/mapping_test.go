package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/pkg/mailer"
)

func TestDecodeMembershipEvent(t *testing.T) {
	ev, err := DecodeMembershipEvent([]byte(`{"type":"membership.joined","userId":"u1","email":"a@example.com","communityId":"c1","occurredAt":"2024-03-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipJoined, ev.Type)
	assert.Equal(t, "c1", ev.CommunityID)
	assert.True(t, ev.OccurredAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	_, err = DecodeMembershipEvent([]byte(`{`))
	assert.Error(t, err)
	_, err = DecodeMembershipEvent([]byte(`{"type":"membership.left","userId":"u1"}`))
	assert.Error(t, err)
}

func TestEmailJobForMembership(t *testing.T) {
	cfg := &config.Config{AppName: "community-leaderboard"}
	ev := entity.MembershipEvent{
		Type: entity.MembershipLeft, UserID: "u1", Email: "a@example.com",
		CommunityID: "c1", CommunityName: "Gophers", OccurredAt: time.Now(),
	}

	job, err := EmailJobForMembership(cfg, ev)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", job.To)
	assert.Equal(t, "community_left", job.Template)
	assert.Equal(t, "a@example.com", job.Data["Email"])

	require.NoError(t, RenderEmailJob(&job))
	assert.Equal(t, "You left Gophers", job.Subject)
	assert.Contains(t, job.Text, "You left Gophers")
	assert.Contains(t, job.HTML, "<strong>Gophers</strong>")

	ev.Type = "membership.renamed"
	_, err = EmailJobForMembership(cfg, ev)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := mailer.EmailJob{To: "b@example.com"}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "b@example.com", job.Data["Email"])
	assert.Equal(t, "b@example.com", job.Data["RecipientEmail"])

	plain := mailer.EmailJob{To: "b@example.com", Subject: "hi", Text: "body"}
	require.NoError(t, RenderEmailJob(&plain))
	assert.Equal(t, "hi", plain.Subject)
}
