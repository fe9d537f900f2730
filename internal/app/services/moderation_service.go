package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/commune-social/commune/internal/app/auth"
	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/pkg/apperrors"
)

// ModerationService defines the interface for bans and the moderator roster
type ModerationService interface {
	BanUser(ctx context.Context, communityID int64, req *dto.BanUserRequest, actorID int64) error
	UnbanUser(ctx context.Context, communityID, targetUserID, actorID int64) error
	AddModerator(ctx context.Context, communityID int64, req *dto.AddModeratorRequest, actorID int64) (*dto.ModeratorResponse, error)
	UpdateModerator(ctx context.Context, communityID, targetUserID int64, req *dto.UpdateModeratorRequest, actorID int64) (*dto.ModeratorResponse, error)
	RemoveModerator(ctx context.Context, communityID, targetUserID, actorID int64) error
	GetModerators(ctx context.Context, communityID int64) ([]dto.ModeratorResponse, error)
}

// moderationServiceImpl implements ModerationService
type moderationServiceImpl struct {
	communityStore  CommunityStore
	membershipStore MembershipStore
	moderatorStore  ModeratorStore
	banStore        BanStore
	userStore       UserStore
	cache           CommunityCache
	authzService    *auth.AuthorizationService
	logger          zerolog.Logger
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	communityStore CommunityStore,
	membershipStore MembershipStore,
	moderatorStore ModeratorStore,
	banStore BanStore,
	userStore UserStore,
	cache CommunityCache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) ModerationService {
	return &moderationServiceImpl{
		communityStore:  communityStore,
		membershipStore: membershipStore,
		moderatorStore:  moderatorStore,
		banStore:        banStore,
		userStore:       userStore,
		cache:           cache,
		authzService:    authzService,
		logger:          logger,
	}
}

// BanUser bans a user from a community. Requires canBan. The owner can never
// be banned. Banning forces the target's membership inactive in the same
// transaction; banning an already-banned user overwrites the ban terms.
func (s *moderationServiceImpl) BanUser(ctx context.Context, communityID int64, req *dto.BanUserRequest, actorID int64) error {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !perms.CanBan() {
		return apperrors.NewForbiddenError("You do not have permission to ban users in this community")
	}

	if req.UserID == community.OwnerID {
		return apperrors.NewCustomError(apperrors.ErrCannotBanOwner, "The community owner cannot be banned")
	}

	if _, err := s.userStore.FindByID(ctx, req.UserID); err != nil {
		return err
	}

	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	ban := &models.CommunityBan{
		CommunityID: communityID,
		UserID:      req.UserID,
		Reason:      reason,
		IsPermanent: req.IsPermanent,
		ExpiresAt:   req.ExpiresAt,
		BannedBy:    actorID,
	}
	if _, err := s.banStore.ApplyBan(ctx, ban); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, communityID)

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("targetUserID", req.UserID).
		Int64("actorID", actorID).
		Bool("permanent", req.IsPermanent).
		Msg("User banned from community")

	return nil
}

// UnbanUser lifts a user's ban. Requires canBan. Idempotent: unbanning a
// user who is not banned succeeds without effect. The membership is not
// restored; the user must rejoin.
func (s *moderationServiceImpl) UnbanUser(ctx context.Context, communityID, targetUserID, actorID int64) error {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !perms.CanBan() {
		return apperrors.NewForbiddenError("You do not have permission to unban users in this community")
	}

	if err := s.banStore.Deactivate(ctx, communityID, targetUserID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("targetUserID", targetUserID).
		Int64("actorID", actorID).
		Msg("User unbanned from community")

	return nil
}

// AddModerator grants moderator capabilities to an active member. Requires
// canInvite. Granting to an existing moderator overwrites the flag set.
func (s *moderationServiceImpl) AddModerator(ctx context.Context, communityID int64, req *dto.AddModeratorRequest, actorID int64) (*dto.ModeratorResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, actorID)
	if err != nil {
		return nil, err
	}
	if !perms.CanInvite() {
		return nil, apperrors.NewForbiddenError("You do not have permission to manage moderators in this community")
	}

	isMember, err := s.membershipStore.IsActiveMember(ctx, communityID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperrors.NewBadRequestError("User must be an active member to become a moderator")
	}

	grant := &models.CommunityModerator{
		CommunityID: communityID,
		UserID:      req.UserID,
		ModeratorFlags: models.ModeratorFlags{
			CanModerate: req.CanModerate,
			CanBan:      req.CanBan,
			CanInvite:   req.CanInvite,
			CanEdit:     req.CanEdit,
		},
	}
	grant, err = s.moderatorStore.Upsert(ctx, grant)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("targetUserID", req.UserID).
		Int64("actorID", actorID).
		Msg("Moderator added to community")

	user, err := s.userStore.FindByID(ctx, req.UserID)
	if err != nil {
		user = nil
	}
	grant.User = user

	return toModeratorResponse(grant), nil
}

// UpdateModerator changes individual capability flags on an existing grant.
// Requires canInvite. Fields left nil keep their current value.
func (s *moderationServiceImpl) UpdateModerator(ctx context.Context, communityID, targetUserID int64, req *dto.UpdateModeratorRequest, actorID int64) (*dto.ModeratorResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, actorID)
	if err != nil {
		return nil, err
	}
	if !perms.CanInvite() {
		return nil, apperrors.NewForbiddenError("You do not have permission to manage moderators in this community")
	}

	existing, err := s.moderatorStore.GetByCommunityAndUser(ctx, communityID, targetUserID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrModeratorNotFound, "User is not a moderator of this community")
	}

	fields := map[string]interface{}{}
	if req.CanModerate != nil {
		fields["can_moderate"] = *req.CanModerate
	}
	if req.CanBan != nil {
		fields["can_ban"] = *req.CanBan
	}
	if req.CanInvite != nil {
		fields["can_invite"] = *req.CanInvite
	}
	if req.CanEdit != nil {
		fields["can_edit"] = *req.CanEdit
	}

	if len(fields) > 0 {
		if err := s.moderatorStore.UpdateFlags(ctx, communityID, targetUserID, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.moderatorStore.GetByCommunityAndUser(ctx, communityID, targetUserID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrModeratorNotFound, "User is not a moderator of this community")
	}

	user, err := s.userStore.FindByID(ctx, targetUserID)
	if err != nil {
		user = nil
	}
	updated.User = user

	return toModeratorResponse(updated), nil
}

// RemoveModerator revokes a moderator grant entirely. Requires canInvite.
// The user stays a member.
func (s *moderationServiceImpl) RemoveModerator(ctx context.Context, communityID, targetUserID, actorID int64) error {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !perms.CanInvite() {
		return apperrors.NewForbiddenError("You do not have permission to manage moderators in this community")
	}

	if err := s.moderatorStore.Delete(ctx, communityID, targetUserID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("targetUserID", targetUserID).
		Int64("actorID", actorID).
		Msg("Moderator removed from community")

	return nil
}

// GetModerators lists a community's moderator roster
func (s *moderationServiceImpl) GetModerators(ctx context.Context, communityID int64) ([]dto.ModeratorResponse, error) {
	if _, err := s.communityStore.GetByID(ctx, communityID); err != nil {
		return nil, err
	}

	moderators, err := s.moderatorStore.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ModeratorResponse, 0, len(moderators))
	for _, m := range moderators {
		responses = append(responses, *toModeratorResponse(m))
	}

	return responses, nil
}

func toModeratorResponse(m *models.CommunityModerator) *dto.ModeratorResponse {
	return &dto.ModeratorResponse{
		ID:          m.ID,
		CommunityID: m.CommunityID,
		UserID:      m.UserID,
		CanModerate: m.CanModerate,
		CanBan:      m.CanBan,
		CanInvite:   m.CanInvite,
		CanEdit:     m.CanEdit,
		User:        toUserBasicResponse(m.User),
		CreatedAt:   m.CreatedAt,
	}
}
