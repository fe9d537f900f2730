package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/app/services"
	"github.com/commune-social/commune/internal/middleware"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// PostController handles post and vote operations
type PostController struct {
	communityService services.CommunityService
	postService      services.PostService
}

// NewPostController creates a new PostController
func NewPostController(communityService services.CommunityService, postService services.PostService) *PostController {
	return &PostController{
		communityService: communityService,
		postService:      postService,
	}
}

func (c *PostController) resolveCommunityID(ctx *gin.Context) (int64, bool) {
	id, err := c.communityService.ResolveID(ctx, ctx.Param("identifier"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// GetPosts handles listing a community's posts
// @Summary List posts
// @Description Lists a community's posts with filtering and sorting. Pending posts are only visible to moderators.
// @Tags posts
// @Accept json
// @Produce json
// @Param identifier path string true "Community ID, name or slug"
// @Param status query string false "Approval filter" Enums(approved, pending, all)
// @Param type query string false "Post type filter" Enums(text, image, video, link, poll)
// @Param search query string false "Search in title and content"
// @Param sort query string false "Sort order" Enums(hot, new, top, controversial)
// @Param time query string false "Time window" Enums(hour, day, week, month, year, all)
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param limit query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/posts [get]
func (c *PostController) GetPosts(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	var query dto.PostQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	page, pageSize := helpers.ParsePaginationParams(ctx)

	response, err := c.postService.GetPosts(ctx, communityID, &query, middleware.GetUserID(ctx), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CreatePost handles submitting a post to a community
// @Summary Create post
// @Description Submits a post. Members only; rejected while a ban is in effect. When the community requires approval the post starts pending.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param request body dto.CreatePostRequest true "Post details"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse} "Post created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or post type not allowed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "User is banned from this community"
// @Failure 404 {object} dto.ErrorResponse "Community not found or user not a member"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.postService.CreatePost(ctx, communityID, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// GetPost handles retrieving a single post
// @Summary Get post
// @Description Retrieves a post by ID
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid post ID"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	response, err := c.postService.GetPost(ctx, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UpdatePost handles editing a post
// @Summary Update post
// @Description Edits a post. Allowed for the author, the community owner, or a moderator holding canModerate.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.UpdatePostRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /posts/{id} [put]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	postID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.postService.UpdatePost(ctx, postID, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// DeletePost handles deleting a post
// @Summary Delete post
// @Description Soft-deletes a post. Allowed for the author, the community owner, or a moderator holding canModerate.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Post deleted successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /posts/{id} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.postService.DeletePost(ctx, postID, middleware.GetUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Post deleted successfully"}))
}

// ApprovePost handles approving a pending post
// @Summary Approve post
// @Description Marks a pending post as approved, bringing it into the community's post count. Requires the canModerate capability.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post approved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /posts/{id}/approve [post]
func (c *PostController) ApprovePost(ctx *gin.Context) {
	postID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	response, err := c.postService.ApprovePost(ctx, postID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// VotePost handles voting on a post
// @Summary Vote on post
// @Description Records a vote on a post. Members only. Every vote increments the chosen counter.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.VoteRequest true "Vote direction"
// @Success 200 {object} dto.APIResponse{data=dto.VoteResponse} "Vote recorded successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Post not found or user not a member"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /posts/{id}/vote [post]
func (c *PostController) VotePost(ctx *gin.Context) {
	postID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.postService.VotePost(ctx, postID, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
