package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

const uniqueViolation = "23505"

type CommunityRepository struct {
	pool *pgxpool.Pool
}

func NewCommunityRepository(pool *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{pool: pool}
}

func (r *CommunityRepository) Create(ctx context.Context, c *entity.Community) error {
	id := c.ID
	if id == "" {
		id = entity.NewID()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO communities (id, name, logo)
		VALUES ($1, $2, $3)
	`, id, c.Name, c.Logo)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert community: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CommunityRepository) Replace(ctx context.Context, c *entity.Community) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO communities (id, name, logo)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, logo = EXCLUDED.logo
	`, c.ID, c.Name, c.Logo)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("replace community: %w", err)
	}
	return nil
}

func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	c := &entity.Community{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, logo FROM communities WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Logo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan community: %w", err)
	}
	return c, nil
}

func (r *CommunityRepository) List(ctx context.Context) ([]entity.Community, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, logo FROM communities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query communities: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Community, error) {
		var c entity.Community
		err := row.Scan(&c.ID, &c.Name, &c.Logo)
		return c, err
	})
}

// Leaderboard counts only users holding at least one award; the join on
// communities drops unaffiliated users.
func (r *CommunityRepository) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		WITH user_totals AS (
			SELECT u.id, u.community_id, SUM(e.points) AS total
			FROM users u
			JOIN experience_points e ON e.user_id = u.id
			GROUP BY u.id, u.community_id
		)
		SELECT c.id, SUM(t.total)::bigint AS total_points, c.logo, c.name, COUNT(*) AS user_count
		FROM user_totals t
		JOIN communities c ON c.id = t.community_id
		GROUP BY c.id, c.logo, c.name
		ORDER BY total_points DESC, c.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.LeaderboardEntry, error) {
		var (
			e            entity.LeaderboardEntry
			total, users int64
		)
		if err := row.Scan(&e.CommunityID, &total, &e.Logo, &e.Name, &users); err != nil {
			return e, err
		}
		e.TotalPoints = int(total)
		e.UserCount = int(users)
		return e, nil
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ repository.CommunityRepository = (*CommunityRepository)(nil)
