package services

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/commune-social/commune/internal/app/auth"
	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/pkg/apperrors"
	"github.com/commune-social/commune/internal/pkg/dberrors"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// CommunityService defines the interface for community operations
type CommunityService interface {
	CreateCommunity(ctx context.Context, req *dto.CreateCommunityRequest, ownerID int64) (*dto.CommunityResponse, error)
	GetAllCommunities(ctx context.Context, query *dto.CommunityQuery, page, pageSize int) (*dto.CommunityListResponse, error)
	GetCommunity(ctx context.Context, identifier string, viewerID int64) (*dto.CommunityResponse, error)
	ResolveID(ctx context.Context, identifier string) (int64, error)
	UpdateCommunity(ctx context.Context, communityID int64, req *dto.UpdateCommunityRequest, userID int64) (*dto.CommunityResponse, error)
	DeleteCommunity(ctx context.Context, communityID int64, userID int64) error
	GetCommunityStats(ctx context.Context, communityID int64, userID int64) (*dto.CommunityStatsResponse, error)
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communityStore  CommunityStore
	membershipStore MembershipStore
	moderatorStore  ModeratorStore
	banStore        BanStore
	postStore       PostStore
	userStore       UserStore
	cache           CommunityCache
	authzService    *auth.AuthorizationService
	logger          zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communityStore CommunityStore,
	membershipStore MembershipStore,
	moderatorStore ModeratorStore,
	banStore BanStore,
	postStore PostStore,
	userStore UserStore,
	cache CommunityCache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		communityStore:  communityStore,
		membershipStore: membershipStore,
		moderatorStore:  moderatorStore,
		banStore:        banStore,
		postStore:       postStore,
		userStore:       userStore,
		cache:           cache,
		authzService:    authzService,
		logger:          logger,
	}
}

// CreateCommunity creates a community owned by ownerID. The owner becomes
// the first member, so the community starts with a member count of one.
func (s *communityServiceImpl) CreateCommunity(ctx context.Context, req *dto.CreateCommunityRequest, ownerID int64) (*dto.CommunityResponse, error) {
	exists, err := s.communityStore.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewCustomError(apperrors.ErrCommunityNameExists, "A community with this name already exists")
	}

	community := &models.Community{
		Name:            req.Name,
		Slug:            helpers.Slugify(req.Name),
		Prefix:          req.Prefix,
		DisplayName:     req.DisplayName,
		Description:     req.Description,
		Rules:           req.Rules,
		AvatarURL:       req.AvatarURL,
		BannerURL:       req.BannerURL,
		PrimaryColor:    req.PrimaryColor,
		OwnerID:         ownerID,
		IsPrivate:       req.IsPrivate,
		RequireApproval: req.RequireApproval,
		AllowImages:     boolOrDefault(req.AllowImages, true),
		AllowVideos:     boolOrDefault(req.AllowVideos, true),
		AllowPolls:      boolOrDefault(req.AllowPolls, true),
		MembersCount:    1,
	}

	community, err = s.communityStore.Create(ctx, community)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.NewCustomError(apperrors.ErrCommunityNameExists, "A community with this name already exists")
		}
		return nil, err
	}

	if _, err := s.membershipStore.Upsert(ctx, community.ID, ownerID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("communityID", community.ID).
		Int64("ownerID", ownerID).
		Str("slug", community.Slug).
		Msg("Community created")

	owner, err := s.userStore.FindByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("ownerID", ownerID).Msg("Failed to load owner profile")
		owner = nil
	}

	perms := auth.CommunityPermissions{IsOwner: true, IsMember: true, Flags: models.AllModeratorFlags}
	return toCommunityResponse(community, owner, &perms), nil
}

// GetAllCommunities retrieves communities with filtering and pagination
func (s *communityServiceImpl) GetAllCommunities(ctx context.Context, query *dto.CommunityQuery, page, pageSize int) (*dto.CommunityListResponse, error) {
	communities, total, err := s.communityStore.GetAll(ctx, query.Search, query.Prefix, query.IsPrivate, query.SortBy, page, pageSize)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]int64, 0, len(communities))
	for _, c := range communities {
		ownerIDs = append(ownerIDs, c.OwnerID)
	}
	owners, err := s.userStore.FindBasicByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommunityResponse, 0, len(communities))
	for _, c := range communities {
		responses = append(responses, *toCommunityResponse(c, owners[c.OwnerID], nil))
	}

	return &dto.CommunityListResponse{
		Communities: responses,
		Pagination:  helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// GetCommunity retrieves a community by ID, name or slug. When viewerID is
// non-zero the response carries the viewer's relationship to the community.
func (s *communityServiceImpl) GetCommunity(ctx context.Context, identifier string, viewerID int64) (*dto.CommunityResponse, error) {
	community, err := s.getByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	owner, err := s.userStore.FindByID(ctx, community.OwnerID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("ownerID", community.OwnerID).Msg("Failed to load owner profile")
		owner = nil
	}

	var permsPtr *auth.CommunityPermissions
	if viewerID != 0 {
		perms, err := s.authzService.ResolveCommunity(ctx, community, viewerID)
		if err != nil {
			return nil, err
		}
		permsPtr = &perms
	}

	return toCommunityResponse(community, owner, permsPtr), nil
}

// ResolveID translates a path identifier into a community ID, so routes
// addressing subresources accept an ID, name or slug interchangeably.
func (s *communityServiceImpl) ResolveID(ctx context.Context, identifier string) (int64, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return id, nil
	}
	community, err := s.communityStore.GetByIdentifier(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return community.ID, nil
}

// getByIdentifier resolves a community from a path identifier: a numeric
// identifier is treated as an ID, anything else matches name or slug.
// ID lookups go through the cache.
func (s *communityServiceImpl) getByIdentifier(ctx context.Context, identifier string) (*models.Community, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return s.getByID(ctx, id)
	}
	return s.communityStore.GetByIdentifier(ctx, identifier)
}

func (s *communityServiceImpl) getByID(ctx context.Context, id int64) (*models.Community, error) {
	if cached := s.cache.Get(ctx, id); cached != nil {
		return cached, nil
	}

	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, community)

	return community, nil
}

// UpdateCommunity applies a partial settings update. Allowed for the owner
// or a moderator holding canEdit.
func (s *communityServiceImpl) UpdateCommunity(ctx context.Context, communityID int64, req *dto.UpdateCommunityRequest, userID int64) (*dto.CommunityResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, userID)
	if err != nil {
		return nil, err
	}
	if !perms.CanEdit() {
		return nil, apperrors.NewForbiddenError("You do not have permission to edit this community")
	}

	fields := map[string]interface{}{}
	if req.Name != nil && *req.Name != community.Name {
		exists, err := s.communityStore.ExistsByName(ctx, *req.Name, communityID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewCustomError(apperrors.ErrCommunityNameExists, "A community with this name already exists")
		}
		fields["name"] = *req.Name
		fields["slug"] = helpers.Slugify(*req.Name)
	}
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Rules != nil {
		fields["rules"] = *req.Rules
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if req.BannerURL != nil {
		fields["banner_url"] = *req.BannerURL
	}
	if req.PrimaryColor != nil {
		fields["primary_color"] = *req.PrimaryColor
	}
	if req.IsPrivate != nil {
		fields["is_private"] = *req.IsPrivate
	}
	if req.RequireApproval != nil {
		fields["require_approval"] = *req.RequireApproval
	}
	if req.AllowImages != nil {
		fields["allow_images"] = *req.AllowImages
	}
	if req.AllowVideos != nil {
		fields["allow_videos"] = *req.AllowVideos
	}
	if req.AllowPolls != nil {
		fields["allow_polls"] = *req.AllowPolls
	}

	if len(fields) > 0 {
		if err := s.communityStore.Update(ctx, communityID, fields); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return nil, apperrors.NewCustomError(apperrors.ErrCommunityNameExists, "A community with this name already exists")
			}
			return nil, err
		}
		s.cache.Invalidate(ctx, communityID)
	}

	updated, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	owner, err := s.userStore.FindByID(ctx, updated.OwnerID)
	if err != nil {
		owner = nil
	}

	return toCommunityResponse(updated, owner, &perms), nil
}

// DeleteCommunity soft-deletes a community. Owner only.
func (s *communityServiceImpl) DeleteCommunity(ctx context.Context, communityID int64, userID int64) error {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	if community.OwnerID != userID {
		return apperrors.NewForbiddenError("Only the owner can delete a community")
	}

	if err := s.communityStore.SoftDelete(ctx, communityID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, communityID)

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("userID", userID).
		Msg("Community deleted")

	return nil
}

// GetCommunityStats returns the activity counters of a community. Allowed
// for the owner or a moderator holding canModerate.
func (s *communityServiceImpl) GetCommunityStats(ctx context.Context, communityID int64, userID int64) (*dto.CommunityStatsResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, userID)
	if err != nil {
		return nil, err
	}
	if !perms.CanModerate() {
		return nil, apperrors.NewForbiddenError("You do not have permission to view community stats")
	}

	pending, err := s.postStore.CountPending(ctx, communityID)
	if err != nil {
		return nil, err
	}
	banned, err := s.banStore.CountInEffect(ctx, communityID)
	if err != nil {
		return nil, err
	}
	moderators, err := s.moderatorStore.CountByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	postsThisWeek, err := s.postStore.CountApprovedSince(ctx, communityID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	postsThisMonth, err := s.postStore.CountApprovedSince(ctx, communityID, now.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}

	return &dto.CommunityStatsResponse{
		CommunityID:    communityID,
		MembersCount:   community.MembersCount,
		PostsCount:     community.PostsCount,
		PostsThisWeek:  postsThisWeek,
		PostsThisMonth: postsThisMonth,
		PendingPosts:   pending,
		BannedUsers:    banned,
		Moderators:     moderators,
	}, nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func toUserBasicResponse(u *models.User) *dto.UserBasicResponse {
	if u == nil {
		return nil
	}
	return &dto.UserBasicResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

func toCommunityResponse(c *models.Community, owner *models.User, perms *auth.CommunityPermissions) *dto.CommunityResponse {
	resp := &dto.CommunityResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		Prefix:          c.Prefix,
		DisplayName:     c.DisplayName,
		Description:     c.Description,
		Rules:           c.Rules,
		AvatarURL:       c.AvatarURL,
		BannerURL:       c.BannerURL,
		PrimaryColor:    c.PrimaryColor,
		IsPrivate:       c.IsPrivate,
		RequireApproval: c.RequireApproval,
		AllowImages:     c.AllowImages,
		AllowVideos:     c.AllowVideos,
		AllowPolls:      c.AllowPolls,
		MembersCount:    c.MembersCount,
		PostsCount:      c.PostsCount,
		Owner:           toUserBasicResponse(owner),
		CreatedAt:       c.CreatedAt,
	}
	if perms != nil {
		resp.Viewer = &dto.ViewerContext{
			IsOwner:     perms.IsOwner,
			IsModerator: perms.IsModerator,
			IsMember:    perms.IsMember,
			IsBanned:    perms.IsBanned,
		}
	}
	return resp
}
