package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithCommunity(id, name string) Option {
	return func(d *EmailData) {
		d.CommunityID = id
		if s := strings.TrimSpace(name); s != "" {
			d.CommunityName = s
		}
	}
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, email string, opts ...Option) EmailData {
	d := EmailData{
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		LogoURL:     cfg.LogoURL,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// TemplateFor returns the template name for a membership event type.
func TemplateFor(eventType string) (string, bool) {
	switch eventType {
	case entity.MembershipJoined:
		return CommunityJoined, true
	case entity.MembershipLeft:
		return CommunityLeft, true
	default:
		return "", false
	}
}

// NewMembershipData builds template data for a membership event.
func NewMembershipData(cfg *config.Config, ev entity.MembershipEvent) map[string]any {
	typ, _ := TemplateFor(ev.Type)
	d := NewBaseEmailData(cfg, typ, ev.Email,
		WithCommunity(ev.CommunityID, ev.CommunityName),
		WithTime(ev.OccurredAt),
	)
	return ToMap(d)
}
