package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/app/services"
	"github.com/commune-social/commune/internal/middleware"
	"github.com/commune-social/commune/internal/pkg/helpers"
)

// MembershipController handles joining, leaving and listing members
type MembershipController struct {
	communityService  services.CommunityService
	membershipService services.MembershipService
}

// NewMembershipController creates a new MembershipController
func NewMembershipController(communityService services.CommunityService, membershipService services.MembershipService) *MembershipController {
	return &MembershipController{
		communityService:  communityService,
		membershipService: membershipService,
	}
}

func (c *MembershipController) resolveCommunityID(ctx *gin.Context) (int64, bool) {
	id, err := c.communityService.ResolveID(ctx, ctx.Param("identifier"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// JoinCommunity handles a user joining a community
// @Summary Join community
// @Description Makes the authenticated user an active member. Rejoining reactivates the old membership with a fresh join date. Rejected while a ban is in effect.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Success 201 {object} dto.APIResponse{data=dto.MemberResponse} "Joined successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "User is banned from this community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/members [post]
func (c *MembershipController) JoinCommunity(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	response, err := c.membershipService.JoinCommunity(ctx, communityID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// LeaveCommunity handles a user leaving a community
// @Summary Leave community
// @Description Ends the authenticated user's membership. The owner cannot leave. Any moderator grant the member held is removed with them.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Left successfully"
// @Failure 400 {object} dto.ErrorResponse "The community owner cannot leave"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Not a member of this community"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/members [delete]
func (c *MembershipController) LeaveCommunity(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	if err := c.membershipService.LeaveCommunity(ctx, communityID, middleware.GetUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Left community successfully"}))
}

// GetMembers handles listing a community's active members
// @Summary List members
// @Description Lists active members with their profiles. Requires ownership or the canModerate capability.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param limit query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/members [get]
func (c *MembershipController) GetMembers(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	page, pageSize := helpers.ParsePaginationParams(ctx)

	response, err := c.membershipService.GetMembers(ctx, communityID, middleware.GetUserID(ctx), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
