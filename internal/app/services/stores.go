package services

import (
	"context"
	"time"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/repositories"
)

// The store interfaces below are what the services consume. The pgx-backed
// repositories satisfy them in production; tests substitute in-memory fakes.

// CommunityStore persists communities
type CommunityStore interface {
	Create(ctx context.Context, c *models.Community) (*models.Community, error)
	GetByID(ctx context.Context, id int64) (*models.Community, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Community, error)
	GetAll(ctx context.Context, search, prefix string, isPrivate *bool, sortBy string, page, pageSize int) ([]*models.Community, int64, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64) error
	RecountMembers(ctx context.Context, communityID int64) error
	RecountPosts(ctx context.Context, communityID int64) error
}

// MembershipStore persists community memberships
type MembershipStore interface {
	GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error)
	IsActiveMember(ctx context.Context, communityID, userID int64) (bool, error)
	Upsert(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error)
	Deactivate(ctx context.Context, communityID, userID int64) (int64, error)
	ListActiveByCommunity(ctx context.Context, communityID int64, page, pageSize int) ([]*models.CommunityMember, int64, error)
}

// BanStore persists community bans
type BanStore interface {
	GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityBan, error)
	ApplyBan(ctx context.Context, b *models.CommunityBan) (*models.CommunityBan, error)
	Deactivate(ctx context.Context, communityID, userID int64) error
	CountInEffect(ctx context.Context, communityID int64) (int64, error)
}

// ModeratorStore persists moderator grants
type ModeratorStore interface {
	GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityModerator, error)
	Upsert(ctx context.Context, m *models.CommunityModerator) (*models.CommunityModerator, error)
	UpdateFlags(ctx context.Context, communityID, userID int64, fields map[string]interface{}) error
	Delete(ctx context.Context, communityID, userID int64) error
	DeleteIfExists(ctx context.Context, communityID, userID int64) error
	ListByCommunity(ctx context.Context, communityID int64) ([]*models.CommunityModerator, error)
	CountByCommunity(ctx context.Context, communityID int64) (int64, error)
}

// PostStore persists community posts
type PostStore interface {
	Create(ctx context.Context, p *models.CommunityPost) (*models.CommunityPost, error)
	GetByID(ctx context.Context, id int64) (*models.CommunityPost, error)
	ListByCommunity(ctx context.Context, communityID int64, filter repositories.PostFilter, page, pageSize int) ([]*models.CommunityPost, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64) error
	Approve(ctx context.Context, id int64) error
	IncrementVote(ctx context.Context, id int64, direction models.VoteDirection) (upvotes, downvotes int64, err error)
	CountPending(ctx context.Context, communityID int64) (int64, error)
	CountApprovedSince(ctx context.Context, communityID int64, since time.Time) (int64, error)
}

// UserStore reads user profiles
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindBasicByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
}

// CommunityCache is the optional read-through cache in front of CommunityStore
type CommunityCache interface {
	Get(ctx context.Context, id int64) *models.Community
	Set(ctx context.Context, community *models.Community)
	Invalidate(ctx context.Context, id int64)
}
