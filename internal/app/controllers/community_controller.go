package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/app/services"
	"github.com/commune-social/commune/internal/middleware"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// CommunityController handles community related operations
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// resolveCommunityID turns the :identifier path parameter into a community ID
func (c *CommunityController) resolveCommunityID(ctx *gin.Context) (int64, bool) {
	id, err := c.communityService.ResolveID(ctx, ctx.Param("identifier"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// GetAllCommunities handles retrieving all communities with optional filtering
// @Summary List communities
// @Description Retrieves communities with optional filtering, sorting and pagination
// @Tags communities
// @Accept json
// @Produce json
// @Param search query string false "Search by name, display name or description"
// @Param prefix query string false "Filter by exact prefix"
// @Param isPrivate query bool false "Filter by privacy"
// @Param sortBy query string false "Sort order" Enums(members, posts, newest, name)
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param limit query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.CommunityListResponse} "Communities retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities [get]
func (c *CommunityController) GetAllCommunities(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)

	var query dto.CommunityQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.communityService.GetAllCommunities(ctx, &query, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CreateCommunity handles creating a new community
// @Summary Create community
// @Description Creates a community owned by the authenticated user, who becomes its first member
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommunityRequest true "Community details"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityResponse} "Community created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 409 {object} dto.ErrorResponse "Community name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities [post]
func (c *CommunityController) CreateCommunity(ctx *gin.Context) {
	var req dto.CreateCommunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.communityService.CreateCommunity(ctx, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// GetCommunity handles retrieving a community by ID, name or slug
// @Summary Get community
// @Description Retrieves a community by numeric ID, name or slug. Authenticated requests also receive the viewer's relationship to the community.
// @Tags communities
// @Accept json
// @Produce json
// @Param identifier path string true "Community ID, name or slug"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse} "Community retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier} [get]
func (c *CommunityController) GetCommunity(ctx *gin.Context) {
	response, err := c.communityService.GetCommunity(ctx, ctx.Param("identifier"), middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UpdateCommunity handles updating community settings
// @Summary Update community
// @Description Applies a partial settings update. Requires ownership or the canEdit capability.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param request body dto.UpdateCommunityRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse} "Community updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Community name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier} [put]
func (c *CommunityController) UpdateCommunity(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCommunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.communityService.UpdateCommunity(ctx, communityID, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// DeleteCommunity handles deleting a community
// @Summary Delete community
// @Description Soft-deletes a community. Owner only.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Community deleted successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only the owner can delete a community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier} [delete]
func (c *CommunityController) DeleteCommunity(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	if err := c.communityService.DeleteCommunity(ctx, communityID, middleware.GetUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Community deleted successfully"}))
}

// GetCommunityStats handles retrieving community counters
// @Summary Get community stats
// @Description Retrieves member, post, pending, ban and moderator counters. Requires ownership or the canModerate capability.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityStatsResponse} "Stats retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/stats [get]
func (c *CommunityController) GetCommunityStats(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	response, err := c.communityService.GetCommunityStats(ctx, communityID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// parsePathID parses a numeric path parameter, responding with 400 on failure
func parsePathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid path parameter").
			WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
