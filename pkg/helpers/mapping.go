package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/pkg/mailer"
	mailtpl "github.com/oksasatya/go-community-leaderboard/pkg/mailer/templates"
)

// ErrUnknownEvent is returned for membership events with no email template.
var ErrUnknownEvent = errors.New("unknown membership event")

// DecodeMembershipEvent parses a queue message body.
func DecodeMembershipEvent(body []byte) (entity.MembershipEvent, error) {
	var ev entity.MembershipEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, err
	}
	if strings.TrimSpace(ev.Email) == "" {
		return ev, fmt.Errorf("membership event for user %q has no email", ev.UserID)
	}
	return ev, nil
}

// EmailJobForMembership maps a membership event to a templated email job.
func EmailJobForMembership(cfg *config.Config, ev entity.MembershipEvent) (mailer.EmailJob, error) {
	name, ok := mailtpl.TemplateFor(ev.Type)
	if !ok {
		return mailer.EmailJob{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	job := mailer.EmailJob{
		To:       ev.Email,
		Template: name,
		Data:     mailtpl.NewMembershipData(cfg, ev),
	}
	EnsureRecipientAndEmail(&job)
	return job, nil
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// RenderEmailJob fills Subject, Text and HTML from the job's template.
// Jobs without a template are returned unchanged.
func RenderEmailJob(job *mailer.EmailJob) error {
	if job.Template == "" {
		return nil
	}
	s, t, h, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return fmt.Errorf("render %s: %w", job.Template, err)
	}
	job.Subject, job.Text, job.HTML = s, t, h
	return nil
}
