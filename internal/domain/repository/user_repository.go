package repository

import (
	"context"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts a new user and assigns u.ID.
	Create(ctx context.Context, u *entity.User) error
	// Replace writes the full user, inserting it if the id is unknown.
	Replace(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// ListWithPoints returns every user that has at least one award, with
	// the summed points and the resolved community. Order is not guaranteed.
	ListWithPoints(ctx context.Context) ([]entity.UserWithPoints, error)
}
