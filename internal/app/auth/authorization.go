package auth

import (
	"context"
	"time"

	"github.com/commune-social/commune/internal/app/models"
)

// MembershipStore is the membership lookup the resolver needs
type MembershipStore interface {
	GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error)
}

// ModeratorStore is the moderator grant lookup the resolver needs
type ModeratorStore interface {
	GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityModerator, error)
}

// BanStore is the ban lookup the resolver needs
type BanStore interface {
	GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityBan, error)
}

// CommunityPermissions is a snapshot of a user's standing in one community,
// resolved at a single instant. It is never cached across requests: bans
// expire and grants change, so every operation resolves afresh.
type CommunityPermissions struct {
	IsOwner     bool
	IsModerator bool
	IsMember    bool
	IsBanned    bool
	Flags       models.ModeratorFlags
}

// CanModerate reports whether the user may approve and remove content
func (p CommunityPermissions) CanModerate() bool { return p.IsOwner || p.Flags.CanModerate }

// CanBan reports whether the user may ban and unban members
func (p CommunityPermissions) CanBan() bool { return p.IsOwner || p.Flags.CanBan }

// CanInvite reports whether the user may manage the moderator roster
func (p CommunityPermissions) CanInvite() bool { return p.IsOwner || p.Flags.CanInvite }

// CanEdit reports whether the user may change community settings
func (p CommunityPermissions) CanEdit() bool { return p.IsOwner || p.Flags.CanEdit }

// AuthorizationService resolves a user's permissions within a community
type AuthorizationService struct {
	membershipStore MembershipStore
	moderatorStore  ModeratorStore
	banStore        BanStore
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(membershipStore MembershipStore, moderatorStore ModeratorStore, banStore BanStore) *AuthorizationService {
	return &AuthorizationService{
		membershipStore: membershipStore,
		moderatorStore:  moderatorStore,
		banStore:        banStore,
	}
}

// ResolveCommunity computes the user's permissions in the given community.
// The owner implicitly holds every moderator capability without a grant row.
// An anonymous user (userID 0) holds no permissions at all. Ban expiry is
// evaluated lazily here against the current clock.
func (s *AuthorizationService) ResolveCommunity(ctx context.Context, community *models.Community, userID int64) (CommunityPermissions, error) {
	var perms CommunityPermissions
	if userID == 0 {
		return perms, nil
	}

	if community.OwnerID == userID {
		perms.IsOwner = true
		perms.Flags = models.AllModeratorFlags
	}

	member, err := s.membershipStore.GetByCommunityAndUser(ctx, community.ID, userID)
	if err != nil {
		return CommunityPermissions{}, err
	}
	perms.IsMember = member != nil && member.IsActive

	grant, err := s.moderatorStore.GetByCommunityAndUser(ctx, community.ID, userID)
	if err != nil {
		return CommunityPermissions{}, err
	}
	if grant != nil {
		perms.IsModerator = true
		if !perms.IsOwner {
			perms.Flags = grant.ModeratorFlags
		}
	}

	ban, err := s.banStore.GetByCommunityAndUser(ctx, community.ID, userID)
	if err != nil {
		return CommunityPermissions{}, err
	}
	perms.IsBanned = ban.InEffect(time.Now())

	return perms, nil
}
