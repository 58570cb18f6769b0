package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	err  error
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func newHandler(s Sender) (*handler, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return &handler{
		cfg:         &config.Config{AppName: "community-leaderboard"},
		sender:      s,
		logger:      logger,
		sendTimeout: time.Second,
	}, hook
}

func body(t *testing.T, ev entity.MembershipEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandle(t *testing.T) {
	joined := entity.MembershipEvent{
		Type: entity.MembershipJoined, UserID: "u1", Email: "ana@example.com",
		CommunityID: "c1", CommunityName: "Gophers", OccurredAt: time.Now(),
	}

	t.Run("sends and acks", func(t *testing.T) {
		s := &fakeSender{}
		h, _ := newHandler(s)
		assert.Equal(t, ack, h.handle(context.Background(), body(t, joined)))
		require.Len(t, s.sent, 1)
		assert.Equal(t, "ana@example.com", s.sent[0].to)
		assert.Equal(t, "Welcome to Gophers", s.sent[0].subject)
		assert.Contains(t, s.sent[0].html, "Gophers")
	})

	t.Run("drops malformed json", func(t *testing.T) {
		s := &fakeSender{}
		h, hook := newHandler(s)
		assert.Equal(t, drop, h.handle(context.Background(), []byte("{")))
		assert.Empty(t, s.sent)
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})

	t.Run("drops unknown type", func(t *testing.T) {
		ev := joined
		ev.Type = "membership.renamed"
		h, _ := newHandler(&fakeSender{})
		assert.Equal(t, drop, h.handle(context.Background(), body(t, ev)))
	})

	t.Run("requeues send failure", func(t *testing.T) {
		h, hook := newHandler(&fakeSender{err: errors.New("mailgun down")})
		assert.Equal(t, requeue, h.handle(context.Background(), body(t, joined)))
		assert.Equal(t, "mailgun down", hook.LastEntry().Data["error"])
	})
}
