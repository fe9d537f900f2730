package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/pkg/apperrors"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves an active user by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := squirrel.Select(
		"id", "username", "name", "avatar_url", "is_active", "created_at", "updated_at",
	).
		From("users").
		Where("id = ? AND is_active = TRUE", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var u models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.Username, &u.Name, &u.AvatarURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &u, nil
}

// FindBasicByIDs retrieves the users with the given IDs keyed by ID
func (r *UserRepository) FindBasicByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	users := make(map[int64]*models.User)
	if len(ids) == 0 {
		return users, nil
	}

	query := squirrel.Select("id", "username", "name", "avatar_url").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		users[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}
