package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/commune-social/commune/internal/app/auth"
	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/pkg/apperrors"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// MembershipService defines the interface for membership lifecycle operations
type MembershipService interface {
	JoinCommunity(ctx context.Context, communityID, userID int64) (*dto.MemberResponse, error)
	LeaveCommunity(ctx context.Context, communityID, userID int64) error
	GetMembers(ctx context.Context, communityID, userID int64, page, pageSize int) (*dto.MemberListResponse, error)
}

// membershipServiceImpl implements MembershipService
type membershipServiceImpl struct {
	communityStore  CommunityStore
	membershipStore MembershipStore
	moderatorStore  ModeratorStore
	banStore        BanStore
	cache           CommunityCache
	authzService    *auth.AuthorizationService
	logger          zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	communityStore CommunityStore,
	membershipStore MembershipStore,
	moderatorStore ModeratorStore,
	banStore BanStore,
	cache CommunityCache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) MembershipService {
	return &membershipServiceImpl{
		communityStore:  communityStore,
		membershipStore: membershipStore,
		moderatorStore:  moderatorStore,
		banStore:        banStore,
		cache:           cache,
		authzService:    authzService,
		logger:          logger,
	}
}

// JoinCommunity makes the user an active member. Rejoining after a leave
// reactivates the old row with a fresh joined_at. A ban currently in effect
// blocks the join; an expired or lifted ban does not.
func (s *membershipServiceImpl) JoinCommunity(ctx context.Context, communityID, userID int64) (*dto.MemberResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	existing, err := s.membershipStore.GetByCommunityAndUser(ctx, communityID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAlreadyMember, "You are already a member of this community")
	}

	ban, err := s.banStore.GetByCommunityAndUser(ctx, communityID, userID)
	if err != nil {
		return nil, err
	}
	if ban.InEffect(time.Now()) {
		return nil, apperrors.NewCustomError(apperrors.ErrUserBanned, "You are banned from this community")
	}

	member, err := s.membershipStore.Upsert(ctx, communityID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.communityStore.RecountMembers(ctx, communityID); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, communityID)

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("userID", userID).
		Str("community", community.Name).
		Msg("User joined community")

	return toMemberResponse(member), nil
}

// LeaveCommunity ends the user's active membership. The owner cannot leave;
// ownership transfer is the only way out for them. Any moderator grant the
// member held is removed with them.
func (s *membershipServiceImpl) LeaveCommunity(ctx context.Context, communityID, userID int64) error {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	if community.OwnerID == userID {
		return apperrors.NewCustomError(apperrors.ErrOwnerCannotLeave, "The community owner cannot leave the community")
	}

	affected, err := s.membershipStore.Deactivate(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewCustomError(apperrors.ErrNotMember, "You are not a member of this community")
	}

	if err := s.moderatorStore.DeleteIfExists(ctx, communityID, userID); err != nil {
		return err
	}

	if err := s.communityStore.RecountMembers(ctx, communityID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, communityID)

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("userID", userID).
		Msg("User left community")

	return nil
}

// GetMembers lists active members of a community. Allowed for the owner or
// a moderator holding canModerate.
func (s *membershipServiceImpl) GetMembers(ctx context.Context, communityID, userID int64, page, pageSize int) (*dto.MemberListResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, userID)
	if err != nil {
		return nil, err
	}
	if !perms.CanModerate() {
		return nil, apperrors.NewForbiddenError("You do not have permission to list community members")
	}

	members, total, err := s.membershipStore.ListActiveByCommunity(ctx, communityID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, *toMemberResponse(m))
	}

	return &dto.MemberListResponse{
		Members:    responses,
		Pagination: helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

func toMemberResponse(m *models.CommunityMember) *dto.MemberResponse {
	return &dto.MemberResponse{
		ID:          m.ID,
		CommunityID: m.CommunityID,
		UserID:      m.UserID,
		IsMuted:     m.IsMuted,
		MutedUntil:  m.MutedUntil,
		JoinedAt:    m.JoinedAt,
		User:        toUserBasicResponse(m.User),
	}
}
