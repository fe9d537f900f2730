package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/db"
)

// BanRepository handles database operations for community bans
type BanRepository struct {
	db *pgxpool.Pool
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *pgxpool.Pool) *BanRepository {
	return &BanRepository{db: db}
}

// GetByCommunityAndUser retrieves the ban row for a user in a community.
// Returns nil without error when the user was never banned. Callers decide
// whether the ban is in effect via models.CommunityBan.InEffect.
func (r *BanRepository) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityBan, error) {
	query := squirrel.Select(
		"id", "community_id", "user_id", "reason", "is_permanent",
		"expires_at", "is_active", "banned_by", "created_at", "updated_at",
	).
		From("community_bans").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var b models.CommunityBan
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&b.ID, &b.CommunityID, &b.UserID, &b.Reason, &b.IsPermanent,
		&b.ExpiresAt, &b.IsActive, &b.BannedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &b, nil
}

// ApplyBan records a ban, force-removes the target's membership and recounts
// the community's members, all in one transaction so a failure leaves no
// partial state. A user has a single ban row per community; banning again
// overwrites the previous terms and reactivates the row.
func (r *BanRepository) ApplyBan(ctx context.Context, b *models.CommunityBan) (*models.CommunityBan, error) {
	upsertBan := `
		INSERT INTO community_bans
			(community_id, user_id, reason, is_permanent, expires_at, is_active, banned_by)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		ON CONFLICT (community_id, user_id)
		DO UPDATE SET
			reason = EXCLUDED.reason,
			is_permanent = EXCLUDED.is_permanent,
			expires_at = EXCLUDED.expires_at,
			is_active = TRUE,
			banned_by = EXCLUDED.banned_by,
			updated_at = NOW()
		RETURNING id, is_active, created_at, updated_at
	`
	deactivateMember := `
		UPDATE community_members
		SET is_active = FALSE
		WHERE community_id = $1 AND user_id = $2 AND is_active = TRUE
	`
	recountMembers := `
		UPDATE communities
		SET members_count = (
			SELECT COUNT(*) FROM community_members
			WHERE community_id = $1 AND is_active = TRUE
		), updated_at = NOW()
		WHERE id = $1
	`

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, upsertBan,
			b.CommunityID, b.UserID, b.Reason, b.IsPermanent, b.ExpiresAt, b.BannedBy,
		).Scan(&b.ID, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		if _, err := tx.Exec(ctx, deactivateMember, b.CommunityID, b.UserID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		if _, err := tx.Exec(ctx, recountMembers, b.CommunityID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// Deactivate lifts a user's ban. Idempotent: lifting a ban that does not
// exist or is already lifted is not an error.
func (r *BanRepository) Deactivate(ctx context.Context, communityID, userID int64) error {
	query := squirrel.Update("community_bans").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("community_id = ? AND user_id = ? AND is_active = TRUE", communityID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// CountInEffect counts bans currently blocking users in a community
func (r *BanRepository) CountInEffect(ctx context.Context, communityID int64) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("community_bans").
		Where("community_id = ? AND is_active = TRUE AND (is_permanent = TRUE OR expires_at > NOW())", communityID).
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
