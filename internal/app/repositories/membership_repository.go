package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// MembershipRepository handles database operations for community memberships
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetByCommunityAndUser retrieves a membership row regardless of its active
// state. Returns nil without error when no row exists.
func (r *MembershipRepository) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error) {
	query := squirrel.Select(
		"id", "community_id", "user_id", "is_active", "is_muted", "muted_until", "joined_at",
	).
		From("community_members").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var m models.CommunityMember
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&m.ID, &m.CommunityID, &m.UserID, &m.IsActive, &m.IsMuted, &m.MutedUntil, &m.JoinedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &m, nil
}

// IsActiveMember reports whether the user currently holds an active membership
func (r *MembershipRepository) IsActiveMember(ctx context.Context, communityID, userID int64) (bool, error) {
	query := squirrel.Select("1").
		From("community_members").
		Where("community_id = ? AND user_id = ? AND is_active = TRUE", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var exists int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// Upsert inserts an active membership, or reactivates the existing row with a
// fresh joined_at when the user held one before.
func (r *MembershipRepository) Upsert(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error) {
	query := `
		INSERT INTO community_members (community_id, user_id, is_active, joined_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (community_id, user_id)
		DO UPDATE SET is_active = TRUE, joined_at = NOW()
		RETURNING id, community_id, user_id, is_active, is_muted, muted_until, joined_at
	`

	var m models.CommunityMember
	err := r.db.QueryRow(ctx, query, communityID, userID).Scan(
		&m.ID, &m.CommunityID, &m.UserID, &m.IsActive, &m.IsMuted, &m.MutedUntil, &m.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &m, nil
}

// Deactivate flips a membership to inactive. Returns the number of rows
// affected so callers can tell whether there was an active membership.
func (r *MembershipRepository) Deactivate(ctx context.Context, communityID, userID int64) (int64, error) {
	query := squirrel.Update("community_members").
		Set("is_active", false).
		Where("community_id = ? AND user_id = ? AND is_active = TRUE", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListActiveByCommunity retrieves active members of a community with their
// user profiles, paginated, newest joiners first.
func (r *MembershipRepository) ListActiveByCommunity(ctx context.Context, communityID int64, page, pageSize int) ([]*models.CommunityMember, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	query := squirrel.Select(
		"m.id", "m.community_id", "m.user_id", "m.is_active", "m.is_muted",
		"m.muted_until", "m.joined_at",
		"u.username", "u.name", "u.avatar_url",
		"COUNT(*) OVER() AS total_count",
	).
		From("community_members m").
		Join("users u ON u.id = m.user_id").
		Where("m.community_id = ? AND m.is_active = TRUE", communityID).
		OrderBy("m.joined_at DESC").
		Limit(uint64(limit)).
		Offset(offset).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var members []*models.CommunityMember
	var total int64
	for rows.Next() {
		var m models.CommunityMember
		var u models.User
		err := rows.Scan(
			&m.ID, &m.CommunityID, &m.UserID, &m.IsActive, &m.IsMuted,
			&m.MutedUntil, &m.JoinedAt,
			&u.Username, &u.Name, &u.AvatarURL,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		u.ID = m.UserID
		m.User = &u
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	if members == nil {
		members = []*models.CommunityMember{}
	}

	return members, total, nil
}
