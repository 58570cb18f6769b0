package entity

import "time"

// Membership event types published after a successful transition.
const (
	MembershipJoined = "membership.joined"
	MembershipLeft   = "membership.left"
)

// MembershipEvent is the message body put on the membership queue.
type MembershipEvent struct {
	Type          string    `json:"type"`
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	CommunityID   string    `json:"communityId"`
	CommunityName string    `json:"communityName,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func (e MembershipEvent) EventType() string { return e.Type }
