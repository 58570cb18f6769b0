package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

func TestRenderMembershipTemplates(t *testing.T) {
	cfg := &config.Config{AppName: "community-leaderboard", SupportURL: "https://support.test"}
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		ev          entity.MembershipEvent
		wantSubject string
		wantText    string
	}{
		{
			name:        "joined",
			ev:          entity.MembershipEvent{Type: entity.MembershipJoined, Email: "ana@example.com", CommunityID: "c1", CommunityName: "Gophers", OccurredAt: at},
			wantSubject: "Welcome to Gophers",
			wantText:    "You joined Gophers on 01 March 2024, 12:30 UTC.",
		},
		{
			name:        "left without name",
			ev:          entity.MembershipEvent{Type: entity.MembershipLeft, Email: "ana@example.com", CommunityID: "c1", OccurredAt: at},
			wantSubject: "You left your community",
			wantText:    "You left your community on 01 March 2024, 12:30 UTC.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := TemplateFor(tt.ev.Type)
			require.True(t, ok)
			data := NewMembershipData(cfg, tt.ev)
			assert.Equal(t, "ana@example.com", data["RecipientEmail"])

			subject, text, html, err := Render(name, data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Contains(t, text, tt.wantText)
			assert.Contains(t, text, "Questions? https://support.test")
			assert.Contains(t, text, "-- community-leaderboard")
			assert.Contains(t, html, `<a href="https://support.test">`)
		})
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	cfg := &config.Config{CompanyName: "Acme"}
	data := NewMembershipData(cfg, entity.MembershipEvent{
		Type: entity.MembershipJoined, Email: "x@example.com", CommunityName: "<b>evil</b>",
	})
	_, _, html, err := Render(CommunityJoined, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>evil</b>")
	assert.Contains(t, html, "&lt;b&gt;evil&lt;/b&gt;")
}

func TestTemplateForUnknown(t *testing.T) {
	_, ok := TemplateFor("membership.renamed")
	assert.False(t, ok)

	_, _, _, err := Render("missing_template", nil)
	assert.Error(t, err)
}
