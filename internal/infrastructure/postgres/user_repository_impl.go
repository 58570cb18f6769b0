package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-community-leaderboard/internal/domain/entity"
	"github.com/oksasatya/go-community-leaderboard/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	id := u.ID
	if id == "" {
		id = entity.NewID()
	}
	if err := r.write(ctx, id, u); err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *UserRepository) Replace(ctx context.Context, u *entity.User) error {
	return r.write(ctx, u.ID, u)
}

// write upserts the user row and rewrites its awards in one transaction.
func (r *UserRepository) write(ctx context.Context, id string, u *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin user tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, profile_picture, community_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    password_hash = EXCLUDED.password_hash,
		    profile_picture = EXCLUDED.profile_picture,
		    community_id = EXCLUDED.community_id
	`, id, u.Email, u.PasswordHash, u.ProfilePicture, nullable(u.CommunityID)); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM experience_points WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("clear experience points: %w", err)
	}
	if len(u.ExperiencePoints) > 0 {
		batch := &pgx.Batch{}
		for i, xp := range u.ExperiencePoints {
			batch.Queue(`
				INSERT INTO experience_points (user_id, position, points, awarded_at)
				VALUES ($1, $2, $3, $4)
			`, id, i, xp.Points, xp.Timestamp)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert experience points: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit user tx: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	var community *string

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, profile_picture, community_id
		FROM users
		WHERE id = $1
	`, id)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ProfilePicture, &community); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if community != nil {
		u.CommunityID = *community
	}

	rows, err := r.pool.Query(ctx, `
		SELECT points, awarded_at
		FROM experience_points
		WHERE user_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query experience points: %w", err)
	}
	u.ExperiencePoints, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ExperiencePoint, error) {
		var xp entity.ExperiencePoint
		err := row.Scan(&xp.Points, &xp.Timestamp)
		return xp, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan experience points: %w", err)
	}
	return u, nil
}

// ListWithPoints mirrors the document pipeline: the inner join on
// experience_points drops users without awards.
func (r *UserRepository) ListWithPoints(ctx context.Context) ([]entity.UserWithPoints, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.profile_picture, SUM(e.points)::bigint AS total_experience,
		       c.id, c.name, c.logo
		FROM users u
		JOIN experience_points e ON e.user_id = u.id
		LEFT JOIN communities c ON c.id = u.community_id
		GROUP BY u.id, u.email, u.profile_picture, c.id, c.name, c.logo
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query users with points: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserWithPoints, error) {
		var (
			out               entity.UserWithPoints
			total             int64
			cID, cName, cLogo *string
		)
		if err := row.Scan(&out.ID, &out.Email, &out.ProfilePicture, &total, &cID, &cName, &cLogo); err != nil {
			return out, err
		}
		out.TotalExperience = int(total)
		if cID != nil {
			out.Community = &entity.Community{ID: *cID, Name: deref(cName), Logo: deref(cLogo)}
		}
		return out, nil
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ repository.UserRepository = (*UserRepository)(nil)
