package repository

import (
	"context"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
)

// CommunityRepository defines the interface for community-related database operations.
type CommunityRepository interface {
	Create(ctx context.Context, c *entity.Community) error
	Replace(ctx context.Context, c *entity.Community) error
	GetByID(ctx context.Context, id string) (*entity.Community, error)
	List(ctx context.Context) ([]entity.Community, error)
	// Leaderboard ranks communities by the summed experience of their
	// members, descending, ties broken by ascending community id.
	// Communities without members are not returned.
	Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error)
}
