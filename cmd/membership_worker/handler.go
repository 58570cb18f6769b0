package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type outcome int

const (
	ack     outcome = iota
	drop            // nack without requeue
	requeue         // nack and retry later
)

type handler struct {
	cfg         *config.Config
	sender      Sender
	logger      *logrus.Logger
	sendTimeout time.Duration
}

// handle turns one queue message into an email. Malformed or unknown
// messages are dropped; send failures are requeued.
func (h *handler) handle(ctx context.Context, body []byte) outcome {
	ev, err := helpers.DecodeMembershipEvent(body)
	if err != nil {
		helpers.LogError(h.logger, "bad message", err, nil)
		return drop
	}
	fields := logrus.Fields{"type": ev.Type, "user_id": ev.UserID, "community_id": ev.CommunityID}

	job, err := helpers.EmailJobForMembership(h.cfg, ev)
	if err != nil {
		helpers.LogError(h.logger, "no template for event", err, fields)
		return drop
	}
	if err := helpers.RenderEmailJob(&job); err != nil {
		helpers.LogError(h.logger, "render failed", err, fields)
		return drop
	}

	c, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()
	if err := h.sender.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
		helpers.LogError(h.logger, "send failed", err, fields)
		return requeue
	}
	helpers.LogInfo(h.logger, "membership email sent", fields)
	return ack
}
