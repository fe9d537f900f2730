package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/pkg/apperrors"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

var communityColumns = []string{
	"c.id", "c.name", "c.slug", "c.prefix", "c.display_name", "c.description",
	"c.rules", "c.avatar_url", "c.banner_url", "c.primary_color", "c.owner_id",
	"c.is_active", "c.is_private", "c.require_approval", "c.allow_images",
	"c.allow_videos", "c.allow_polls", "c.members_count", "c.posts_count",
	"c.created_at", "c.updated_at",
}

func scanCommunity(row pgx.Row) (*models.Community, error) {
	var c models.Community
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Prefix, &c.DisplayName, &c.Description,
		&c.Rules, &c.AvatarURL, &c.BannerURL, &c.PrimaryColor, &c.OwnerID,
		&c.IsActive, &c.IsPrivate, &c.RequireApproval, &c.AllowImages,
		&c.AllowVideos, &c.AllowPolls, &c.MembersCount, &c.PostsCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new community and returns it with its generated ID
func (r *CommunityRepository) Create(ctx context.Context, c *models.Community) (*models.Community, error) {
	query := squirrel.Insert("communities").
		Columns(
			"name", "slug", "prefix", "display_name", "description", "rules",
			"avatar_url", "banner_url", "primary_color", "owner_id",
			"is_private", "require_approval", "allow_images", "allow_videos",
			"allow_polls", "members_count",
		).
		Values(
			c.Name, c.Slug, c.Prefix, c.DisplayName, c.Description, c.Rules,
			c.AvatarURL, c.BannerURL, c.PrimaryColor, c.OwnerID,
			c.IsPrivate, c.RequireApproval, c.AllowImages, c.AllowVideos,
			c.AllowPolls, c.MembersCount,
		).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return c, nil
}

// GetByID retrieves an active community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	query := squirrel.Select(communityColumns...).
		From("communities c").
		Where("c.id = ? AND c.is_active = TRUE", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	community, err := scanCommunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return community, nil
}

// GetByIdentifier retrieves an active community whose name or slug matches
// the given identifier.
func (r *CommunityRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Community, error) {
	query := squirrel.Select(communityColumns...).
		From("communities c").
		Where("(c.name = ? OR c.slug = ?) AND c.is_active = TRUE", identifier, identifier).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	community, err := scanCommunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return community, nil
}

// GetAll retrieves active communities with filtering and pagination
func (r *CommunityRepository) GetAll(ctx context.Context, search, prefix string, isPrivate *bool, sortBy string, page, pageSize int) ([]*models.Community, int64, error) {
	query := squirrel.Select(append(communityColumns, "COUNT(*) OVER() AS total_count")...).
		From("communities c").
		Where("c.is_active = TRUE").
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(c.name ILIKE ? OR c.display_name ILIKE ? OR c.description ILIKE ?)", pattern, pattern, pattern)
	}
	if prefix != "" {
		query = query.Where("c.prefix = ?", prefix)
	}
	if isPrivate != nil {
		query = query.Where("c.is_private = ?", *isPrivate)
	}

	switch sortBy {
	case "members":
		query = query.OrderBy("c.members_count DESC")
	case "posts":
		query = query.OrderBy("c.posts_count DESC")
	case "name":
		query = query.OrderBy("c.name ASC")
	default:
		query = query.OrderBy("c.created_at DESC")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	query = query.Limit(uint64(limit)).Offset(offset)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var communities []*models.Community
	var total int64
	for rows.Next() {
		var c models.Community
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Prefix, &c.DisplayName, &c.Description,
			&c.Rules, &c.AvatarURL, &c.BannerURL, &c.PrimaryColor, &c.OwnerID,
			&c.IsActive, &c.IsPrivate, &c.RequireApproval, &c.AllowImages,
			&c.AllowVideos, &c.AllowPolls, &c.MembersCount, &c.PostsCount,
			&c.CreatedAt, &c.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		communities = append(communities, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	if communities == nil {
		communities = []*models.Community{}
	}

	return communities, total, nil
}

// ExistsByName reports whether an active community with the given name exists,
// excluding the community with excludeID (pass 0 to exclude nothing).
func (r *CommunityRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := squirrel.Select("1").
		From("communities").
		Where("name = ? AND is_active = TRUE AND id <> ?", name, excludeID).
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

// Update applies the non-nil fields of the map to a community row
func (r *CommunityRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	query := squirrel.Update("communities").
		SetMap(fields).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ? AND is_active = TRUE", id).
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
		return apperrors.ErrCommunityNotFound
	}

	return nil
}

// SoftDelete marks a community as inactive
func (r *CommunityRepository) SoftDelete(ctx context.Context, id int64) error {
	query := squirrel.Update("communities").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ? AND is_active = TRUE", id).
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
		return apperrors.ErrCommunityNotFound
	}

	return nil
}

// RecountMembers recomputes members_count from the membership table in a
// single statement, so concurrent joins and leaves always converge on the
// true count.
func (r *CommunityRepository) RecountMembers(ctx context.Context, communityID int64) error {
	query := `
		UPDATE communities
		SET members_count = (
			SELECT COUNT(*) FROM community_members
			WHERE community_id = $1 AND is_active = TRUE
		), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, communityID); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// RecountPosts recomputes posts_count from approved, active posts
func (r *CommunityRepository) RecountPosts(ctx context.Context, communityID int64) error {
	query := `
		UPDATE communities
		SET posts_count = (
			SELECT COUNT(*) FROM community_posts
			WHERE community_id = $1 AND is_active = TRUE AND is_approved = TRUE
		), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, communityID); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}
