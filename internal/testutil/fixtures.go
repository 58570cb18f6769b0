package testutil

import (
	"time"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

// Epoch is a fixed, millisecond-aligned instant shared by fixtures so that
// every backend round-trips timestamps exactly.
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// UserBuilder builds entity.User fixtures.
type UserBuilder struct {
	user entity.User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{user: entity.User{
		Email:        "player@example.com",
		PasswordHash: "$2a$10$fixturehashfixturehashfixturehashfixturehashfixtu",
	}}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithPicture(url string) *UserBuilder {
	b.user.ProfilePicture = url
	return b
}

func (b *UserBuilder) WithCommunity(id string) *UserBuilder {
	b.user.CommunityID = id
	return b
}

// WithPoints appends one award per value, one minute apart.
func (b *UserBuilder) WithPoints(points ...int) *UserBuilder {
	for _, p := range points {
		at := Epoch.Add(time.Duration(len(b.user.ExperiencePoints)) * time.Minute)
		b.user.ExperiencePoints = append(b.user.ExperiencePoints, entity.ExperiencePoint{Points: p, Timestamp: at})
	}
	return b
}

func (b *UserBuilder) Build() *entity.User {
	return b.user.Clone()
}
