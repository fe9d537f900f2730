package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/commune-social/commune/internal/app/auth"
	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/app/repositories"
	"github.com/commune-social/commune/internal/pkg/apperrors"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// PostService defines the interface for post and vote operations
type PostService interface {
	CreatePost(ctx context.Context, communityID int64, req *dto.CreatePostRequest, authorID int64) (*dto.PostResponse, error)
	GetPost(ctx context.Context, postID int64) (*dto.PostResponse, error)
	GetPosts(ctx context.Context, communityID int64, query *dto.PostQuery, userID int64, page, pageSize int) (*dto.PostListResponse, error)
	UpdatePost(ctx context.Context, postID int64, req *dto.UpdatePostRequest, userID int64) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, postID, userID int64) error
	ApprovePost(ctx context.Context, postID, userID int64) (*dto.PostResponse, error)
	VotePost(ctx context.Context, postID int64, req *dto.VoteRequest, userID int64) (*dto.VoteResponse, error)
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	communityStore  CommunityStore
	membershipStore MembershipStore
	banStore        BanStore
	postStore       PostStore
	cache           CommunityCache
	authzService    *auth.AuthorizationService
	logger          zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	communityStore CommunityStore,
	membershipStore MembershipStore,
	banStore BanStore,
	postStore PostStore,
	cache CommunityCache,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) PostService {
	return &postServiceImpl{
		communityStore:  communityStore,
		membershipStore: membershipStore,
		banStore:        banStore,
		postStore:       postStore,
		cache:           cache,
		authzService:    authzService,
		logger:          logger,
	}
}

// CreatePost submits a post to a community. The author must be an active
// member and not hold a ban in effect; the two checks are independent, so a
// banned user whose membership somehow stayed active is still rejected.
// Approval is stamped once here from the community's require_approval policy.
func (s *postServiceImpl) CreatePost(ctx context.Context, communityID int64, req *dto.CreatePostRequest, authorID int64) (*dto.PostResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.membershipStore.IsActiveMember(ctx, communityID, authorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperrors.NewCustomError(apperrors.ErrMembershipRequired, "You must be a member to post in this community")
	}

	ban, err := s.banStore.GetByCommunityAndUser(ctx, communityID, authorID)
	if err != nil {
		return nil, err
	}
	if ban.InEffect(time.Now()) {
		return nil, apperrors.NewCustomError(apperrors.ErrUserBanned, "You are banned from this community")
	}

	postType := models.PostType(req.Type)
	if err := s.validatePostType(community, postType); err != nil {
		return nil, err
	}

	post := &models.CommunityPost{
		CommunityID:     communityID,
		AuthorID:        authorID,
		Title:           req.Title,
		Content:         req.Content,
		Type:            postType,
		ImageURL:        req.ImageURL,
		VideoURL:        req.VideoURL,
		LinkURL:         req.LinkURL,
		LinkTitle:       req.LinkTitle,
		LinkDescription: req.LinkDescription,
		IsApproved:      !community.RequireApproval,
	}

	post, err = s.postStore.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	if post.IsApproved {
		if err := s.communityStore.RecountPosts(ctx, communityID); err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx, communityID)
	}

	s.logger.Info().
		Int64("postID", post.ID).
		Int64("communityID", communityID).
		Int64("authorID", authorID).
		Bool("approved", post.IsApproved).
		Msg("Post created")

	return toPostResponse(post), nil
}

func (s *postServiceImpl) validatePostType(community *models.Community, postType models.PostType) error {
	switch postType {
	case models.PostTypeImage:
		if !community.AllowImages {
			return apperrors.NewBadRequestError("This community does not allow image posts")
		}
	case models.PostTypeVideo:
		if !community.AllowVideos {
			return apperrors.NewBadRequestError("This community does not allow video posts")
		}
	case models.PostTypePoll:
		if !community.AllowPolls {
			return apperrors.NewBadRequestError("This community does not allow poll posts")
		}
	}
	return nil
}

// GetPost retrieves a single post
func (s *postServiceImpl) GetPost(ctx context.Context, postID int64) (*dto.PostResponse, error) {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return toPostResponse(post), nil
}

// GetPosts lists a community's posts. Pending posts are only visible to the
// owner and moderators holding canModerate; for everyone else the listing is
// forced to approved posts only.
func (s *postServiceImpl) GetPosts(ctx context.Context, communityID int64, query *dto.PostQuery, userID int64, page, pageSize int) (*dto.PostListResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	status := query.Status
	if status == "pending" || status == "all" {
		perms, err := s.authzService.ResolveCommunity(ctx, community, userID)
		if err != nil {
			return nil, err
		}
		if !perms.CanModerate() {
			status = "approved"
		}
	}

	filter := repositories.PostFilter{
		Status: status,
		Type:   query.Type,
		Search: query.Search,
		Sort:   query.Sort,
		Time:   query.Time,
	}

	posts, total, err := s.postStore.ListByCommunity(ctx, communityID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, *toPostResponse(p))
	}

	return &dto.PostListResponse{
		Posts:      responses,
		Pagination: helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// UpdatePost edits a post. Allowed for the author, the community owner, or
// a moderator holding canModerate.
func (s *postServiceImpl) UpdatePost(ctx context.Context, postID int64, req *dto.UpdatePostRequest, userID int64) (*dto.PostResponse, error) {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.requirePostControl(ctx, post, userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.IsPinned != nil {
		fields["is_pinned"] = *req.IsPinned
	}
	if req.IsLocked != nil {
		fields["is_locked"] = *req.IsLocked
	}

	if len(fields) > 0 {
		if err := s.postStore.Update(ctx, postID, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return toPostResponse(updated), nil
}

// DeletePost soft-deletes a post. Allowed for the author, the community
// owner, or a moderator holding canModerate.
func (s *postServiceImpl) DeletePost(ctx context.Context, postID, userID int64) error {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requirePostControl(ctx, post, userID); err != nil {
		return err
	}

	if err := s.postStore.SoftDelete(ctx, postID); err != nil {
		return err
	}

	if err := s.communityStore.RecountPosts(ctx, post.CommunityID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, post.CommunityID)

	s.logger.Info().
		Int64("postID", postID).
		Int64("communityID", post.CommunityID).
		Int64("userID", userID).
		Msg("Post deleted")

	return nil
}

// requirePostControl checks that userID may edit or delete the given post
func (s *postServiceImpl) requirePostControl(ctx context.Context, post *models.CommunityPost, userID int64) error {
	if post.AuthorID == userID {
		return nil
	}

	community, err := s.communityStore.GetByID(ctx, post.CommunityID)
	if err != nil {
		return err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, userID)
	if err != nil {
		return err
	}
	if !perms.CanModerate() {
		return apperrors.NewForbiddenError("You do not have permission to modify this post")
	}

	return nil
}

// ApprovePost marks a pending post as approved and brings it into the
// community's post count. Requires canModerate.
func (s *postServiceImpl) ApprovePost(ctx context.Context, postID, userID int64) (*dto.PostResponse, error) {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	community, err := s.communityStore.GetByID(ctx, post.CommunityID)
	if err != nil {
		return nil, err
	}

	perms, err := s.authzService.ResolveCommunity(ctx, community, userID)
	if err != nil {
		return nil, err
	}
	if !perms.CanModerate() {
		return nil, apperrors.NewForbiddenError("You do not have permission to approve posts in this community")
	}

	if err := s.postStore.Approve(ctx, postID); err != nil {
		return nil, err
	}

	if err := s.communityStore.RecountPosts(ctx, post.CommunityID); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, post.CommunityID)

	s.logger.Info().
		Int64("postID", postID).
		Int64("communityID", post.CommunityID).
		Int64("userID", userID).
		Msg("Post approved")

	updated, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return toPostResponse(updated), nil
}

// VotePost records a vote on a post. Members only. Every vote increments the
// chosen counter; a user may vote any number of times and votes are never
// retracted.
func (s *postServiceImpl) VotePost(ctx context.Context, postID int64, req *dto.VoteRequest, userID int64) (*dto.VoteResponse, error) {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.membershipStore.IsActiveMember(ctx, post.CommunityID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperrors.NewCustomError(apperrors.ErrMembershipRequired, "You must be a member to vote in this community")
	}

	upvotes, downvotes, err := s.postStore.IncrementVote(ctx, postID, models.VoteDirection(req.Direction))
	if err != nil {
		return nil, err
	}

	return &dto.VoteResponse{
		PostID:    postID,
		Upvotes:   upvotes,
		Downvotes: downvotes,
	}, nil
}

func toPostResponse(p *models.CommunityPost) *dto.PostResponse {
	return &dto.PostResponse{
		ID:              p.ID,
		CommunityID:     p.CommunityID,
		AuthorID:        p.AuthorID,
		Title:           p.Title,
		Content:         p.Content,
		Type:            string(p.Type),
		ImageURL:        p.ImageURL,
		VideoURL:        p.VideoURL,
		LinkURL:         p.LinkURL,
		LinkTitle:       p.LinkTitle,
		LinkDescription: p.LinkDescription,
		IsApproved:      p.IsApproved,
		IsPinned:        p.IsPinned,
		IsLocked:        p.IsLocked,
		Upvotes:         p.Upvotes,
		Downvotes:       p.Downvotes,
		Author:          toUserBasicResponse(p.Author),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
