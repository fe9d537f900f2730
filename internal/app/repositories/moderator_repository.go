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

// ModeratorRepository handles database operations for moderator grants
type ModeratorRepository struct {
	db *pgxpool.Pool
}

// NewModeratorRepository creates a new ModeratorRepository
func NewModeratorRepository(db *pgxpool.Pool) *ModeratorRepository {
	return &ModeratorRepository{db: db}
}

// GetByCommunityAndUser retrieves a user's moderator grant in a community.
// Returns nil without error when the user holds no grant.
func (r *ModeratorRepository) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityModerator, error) {
	query := squirrel.Select(
		"id", "community_id", "user_id", "can_moderate", "can_ban",
		"can_invite", "can_edit", "created_at", "updated_at",
	).
		From("community_moderators").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var m models.CommunityModerator
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&m.ID, &m.CommunityID, &m.UserID, &m.CanModerate, &m.CanBan,
		&m.CanInvite, &m.CanEdit, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &m, nil
}

// Upsert grants moderator capabilities, overwriting any existing grant for
// the same user with the new flag set.
func (r *ModeratorRepository) Upsert(ctx context.Context, m *models.CommunityModerator) (*models.CommunityModerator, error) {
	query := `
		INSERT INTO community_moderators
			(community_id, user_id, can_moderate, can_ban, can_invite, can_edit)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (community_id, user_id)
		DO UPDATE SET
			can_moderate = EXCLUDED.can_moderate,
			can_ban = EXCLUDED.can_ban,
			can_invite = EXCLUDED.can_invite,
			can_edit = EXCLUDED.can_edit,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		m.CommunityID, m.UserID, m.CanModerate, m.CanBan, m.CanInvite, m.CanEdit,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return m, nil
}

// UpdateFlags sets the given capability columns on an existing grant
func (r *ModeratorRepository) UpdateFlags(ctx context.Context, communityID, userID int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	query := squirrel.Update("community_moderators").
		SetMap(fields).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrModeratorNotFound
	}

	return nil
}

// Delete removes a moderator grant entirely
func (r *ModeratorRepository) Delete(ctx context.Context, communityID, userID int64) error {
	query := squirrel.Delete("community_moderators").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrModeratorNotFound
	}

	return nil
}

// DeleteIfExists removes a moderator grant, treating a missing grant as a
// no-op. Used when a member leaves and any grant they held goes with them.
func (r *ModeratorRepository) DeleteIfExists(ctx context.Context, communityID, userID int64) error {
	err := r.Delete(ctx, communityID, userID)
	if err == apperrors.ErrModeratorNotFound {
		return nil
	}
	return err
}

// ListByCommunity retrieves all moderator grants for a community with user
// profiles, oldest grant first.
func (r *ModeratorRepository) ListByCommunity(ctx context.Context, communityID int64) ([]*models.CommunityModerator, error) {
	query := squirrel.Select(
		"m.id", "m.community_id", "m.user_id", "m.can_moderate", "m.can_ban",
		"m.can_invite", "m.can_edit", "m.created_at", "m.updated_at",
		"u.username", "u.name", "u.avatar_url",
	).
		From("community_moderators m").
		Join("users u ON u.id = m.user_id").
		Where("m.community_id = ?", communityID).
		OrderBy("m.created_at ASC").
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

	var moderators []*models.CommunityModerator
	for rows.Next() {
		var m models.CommunityModerator
		var u models.User
		err := rows.Scan(
			&m.ID, &m.CommunityID, &m.UserID, &m.CanModerate, &m.CanBan,
			&m.CanInvite, &m.CanEdit, &m.CreatedAt, &m.UpdatedAt,
			&u.Username, &u.Name, &u.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		u.ID = m.UserID
		m.User = &u
		moderators = append(moderators, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if moderators == nil {
		moderators = []*models.CommunityModerator{}
	}

	return moderators, nil
}

// CountByCommunity counts moderator grants in a community
func (r *ModeratorRepository) CountByCommunity(ctx context.Context, communityID int64) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("community_moderators").
		Where("community_id = ?", communityID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return count, nil
}
