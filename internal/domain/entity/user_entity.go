package entity

import (
	"errors"
	"strings"
	"time"
)

// ExperiencePoint is a single award. Entries are never edited once appended.
type ExperiencePoint struct {
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// User is the aggregate root for the user domain.
// PasswordHash is an opaque credential hash and never leaves the process.
// CommunityID is empty while the user is unaffiliated.
type User struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	PasswordHash     string            `json:"-"`
	ProfilePicture   string            `json:"profilePicture,omitempty"`
	ExperiencePoints []ExperiencePoint `json:"experiencePoints"`
	CommunityID      string            `json:"community,omitempty"`
}

// TotalExperience sums points over all awards.
func (u *User) TotalExperience() int {
	total := 0
	for _, xp := range u.ExperiencePoints {
		total += xp.Points
	}
	return total
}

func (u *User) HasCommunity() bool { return u.CommunityID != "" }

// Validate checks the fields the store requires.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.CommunityID != "" && !ValidIDs(u.CommunityID) {
		return errors.New("community reference is not a valid id")
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate stored awards.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.ExperiencePoints != nil {
		cp.ExperiencePoints = make([]ExperiencePoint, len(u.ExperiencePoints))
		copy(cp.ExperiencePoints, u.ExperiencePoints)
	}
	return &cp
}

// PopulatedUser is a User with its community reference resolved for display.
type PopulatedUser struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	ProfilePicture   string            `json:"profilePicture,omitempty"`
	ExperiencePoints []ExperiencePoint `json:"experiencePoints"`
	Community        *Community        `json:"community"`
}

// UserWithPoints is one row of the per-user points query.
type UserWithPoints struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	ProfilePicture  string     `json:"profilePicture,omitempty"`
	Community       *Community `json:"community"`
	TotalExperience int        `json:"totalExperience"`
}
