package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/pkg/apperrors"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// PostRepository handles database operations for community posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// PostFilter narrows and orders post listings
type PostFilter struct {
	Status string // approved, pending, all
	Type   string
	Search string
	Sort   string // hot, new, top, controversial
	Time   string // hour, day, week, month, year, all
}

// Create inserts a new post and returns it with generated fields
func (r *PostRepository) Create(ctx context.Context, p *models.CommunityPost) (*models.CommunityPost, error) {
	query := squirrel.Insert("community_posts").
		Columns(
			"community_id", "author_id", "title", "content", "type",
			"image_url", "video_url", "link_url", "link_title",
			"link_description", "is_approved",
		).
		Values(
			p.CommunityID, p.AuthorID, p.Title, p.Content, p.Type,
			p.ImageURL, p.VideoURL, p.LinkURL, p.LinkTitle,
			p.LinkDescription, p.IsApproved,
		).
		Suffix("RETURNING id, is_active, is_pinned, is_locked, upvotes, downvotes, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.IsActive, &p.IsPinned, &p.IsLocked,
		&p.Upvotes, &p.Downvotes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return p, nil
}

// GetByID retrieves an active post with its author profile
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.CommunityPost, error) {
	query := squirrel.Select(
		"p.id", "p.community_id", "p.author_id", "p.title", "p.content",
		"p.type", "p.image_url", "p.video_url", "p.link_url", "p.link_title",
		"p.link_description", "p.is_approved", "p.is_active", "p.is_pinned",
		"p.is_locked", "p.upvotes", "p.downvotes", "p.created_at", "p.updated_at",
		"u.username", "u.name", "u.avatar_url",
	).
		From("community_posts p").
		Join("users u ON u.id = p.author_id").
		Where("p.id = ? AND p.is_active = TRUE", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var p models.CommunityPost
	var u models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.CommunityID, &p.AuthorID, &p.Title, &p.Content,
		&p.Type, &p.ImageURL, &p.VideoURL, &p.LinkURL, &p.LinkTitle,
		&p.LinkDescription, &p.IsApproved, &p.IsActive, &p.IsPinned,
		&p.IsLocked, &p.Upvotes, &p.Downvotes, &p.CreatedAt, &p.UpdatedAt,
		&u.Username, &u.Name, &u.AvatarURL,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	u.ID = p.AuthorID
	p.Author = &u

	return &p, nil
}

// ListByCommunity retrieves active posts for a community, filtered and
// sorted, with pagination. Pinned posts surface first within every sort.
func (r *PostRepository) ListByCommunity(ctx context.Context, communityID int64, filter PostFilter, page, pageSize int) ([]*models.CommunityPost, int64, error) {
	query := squirrel.Select(
		"p.id", "p.community_id", "p.author_id", "p.title", "p.content",
		"p.type", "p.image_url", "p.video_url", "p.link_url", "p.link_title",
		"p.link_description", "p.is_approved", "p.is_active", "p.is_pinned",
		"p.is_locked", "p.upvotes", "p.downvotes", "p.created_at", "p.updated_at",
		"u.username", "u.name", "u.avatar_url",
		"COUNT(*) OVER() AS total_count",
	).
		From("community_posts p").
		Join("users u ON u.id = p.author_id").
		Where("p.community_id = ? AND p.is_active = TRUE", communityID).
		PlaceholderFormat(squirrel.Dollar)

	switch filter.Status {
	case "pending":
		query = query.Where("p.is_approved = FALSE")
	case "all":
		// no approval filter
	default:
		query = query.Where("p.is_approved = TRUE")
	}

	if filter.Type != "" {
		query = query.Where("p.type = ?", filter.Type)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("(p.title ILIKE ? OR p.content ILIKE ?)", pattern, pattern)
	}

	if interval := timeWindowInterval(filter.Time); interval != "" {
		query = query.Where("p.created_at > NOW() - INTERVAL '" + interval + "'")
	}

	switch filter.Sort {
	case "top":
		query = query.OrderBy("p.is_pinned DESC", "(p.upvotes - p.downvotes) DESC", "p.created_at DESC")
	case "controversial":
		// High engagement with a near-even split ranks highest.
		query = query.OrderBy(
			"p.is_pinned DESC",
			"(p.upvotes + p.downvotes) * (LEAST(p.upvotes, p.downvotes)::float / GREATEST(GREATEST(p.upvotes, p.downvotes), 1)) DESC",
			"p.created_at DESC",
		)
	case "hot":
		// Score decays with age, halving roughly every 12 hours.
		query = query.OrderBy(
			"p.is_pinned DESC",
			"(p.upvotes - p.downvotes) / POWER((EXTRACT(EPOCH FROM NOW() - p.created_at) / 3600) + 2, 1.5) DESC",
			"p.created_at DESC",
		)
	default:
		query = query.OrderBy("p.is_pinned DESC", "p.created_at DESC")
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

	var posts []*models.CommunityPost
	var total int64
	for rows.Next() {
		var p models.CommunityPost
		var u models.User
		err := rows.Scan(
			&p.ID, &p.CommunityID, &p.AuthorID, &p.Title, &p.Content,
			&p.Type, &p.ImageURL, &p.VideoURL, &p.LinkURL, &p.LinkTitle,
			&p.LinkDescription, &p.IsApproved, &p.IsActive, &p.IsPinned,
			&p.IsLocked, &p.Upvotes, &p.Downvotes, &p.CreatedAt, &p.UpdatedAt,
			&u.Username, &u.Name, &u.AvatarURL,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		u.ID = p.AuthorID
		p.Author = &u
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	if posts == nil {
		posts = []*models.CommunityPost{}
	}

	return posts, total, nil
}

func timeWindowInterval(window string) string {
	switch window {
	case "hour":
		return "1 hour"
	case "day":
		return "1 day"
	case "week":
		return "7 days"
	case "month":
		return "30 days"
	case "year":
		return "365 days"
	default:
		return ""
	}
}

// Update applies the given fields to an active post row
func (r *PostRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	query := squirrel.Update("community_posts").
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
		return apperrors.ErrPostNotFound
	}

	return nil
}

// SoftDelete marks a post as inactive
func (r *PostRepository) SoftDelete(ctx context.Context, id int64) error {
	query := squirrel.Update("community_posts").
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
		return apperrors.ErrPostNotFound
	}

	return nil
}

// Approve marks a pending post as approved
func (r *PostRepository) Approve(ctx context.Context, id int64) error {
	query := squirrel.Update("community_posts").
		Set("is_approved", true).
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
		return apperrors.ErrPostNotFound
	}

	return nil
}

// IncrementVote adds one vote in the given direction and returns the updated
// counters. Every vote counts; there is no per-user vote tracking.
func (r *PostRepository) IncrementVote(ctx context.Context, id int64, direction models.VoteDirection) (upvotes, downvotes int64, err error) {
	column := "upvotes"
	if direction == models.VoteDown {
		column = "downvotes"
	}

	query := fmt.Sprintf(`
		UPDATE community_posts
		SET %s = %s + 1, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING upvotes, downvotes
	`, column, column)

	err = r.db.QueryRow(ctx, query, id).Scan(&upvotes, &downvotes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, 0, apperrors.ErrPostNotFound
		}
		return 0, 0, fmt.Errorf("error executing query: %w", err)
	}

	return upvotes, downvotes, nil
}

// CountPending counts active posts awaiting approval in a community
func (r *PostRepository) CountPending(ctx context.Context, communityID int64) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("community_posts").
		Where("community_id = ? AND is_active = TRUE AND is_approved = FALSE", communityID).
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

// CountApprovedSince counts active, approved posts created after the given
// instant. Backs the weekly and monthly windows of the community stats.
func (r *PostRepository) CountApprovedSince(ctx context.Context, communityID int64, since time.Time) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("community_posts").
		Where("community_id = ? AND is_active = TRUE AND is_approved = TRUE AND created_at > ?", communityID, since).
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
