package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/app/services"
	"github.com/commune-social/commune/internal/middleware"
)

// ModerationController handles bans and the moderator roster
type ModerationController struct {
	communityService  services.CommunityService
	moderationService services.ModerationService
}

// NewModerationController creates a new ModerationController
func NewModerationController(communityService services.CommunityService, moderationService services.ModerationService) *ModerationController {
	return &ModerationController{
		communityService:  communityService,
		moderationService: moderationService,
	}
}

func (c *ModerationController) resolveCommunityID(ctx *gin.Context) (int64, bool) {
	id, err := c.communityService.ResolveID(ctx, ctx.Param("identifier"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// BanUser handles banning a user from a community
// @Summary Ban user
// @Description Bans a user, permanently or until a given time. Requires the canBan capability. The target's membership is forced inactive. Banning an already-banned user overwrites the ban terms.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param request body dto.BanUserRequest true "Ban details"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "User banned successfully"
// @Failure 400 {object} dto.ErrorResponse "The community owner cannot be banned"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Community or user not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/bans [post]
func (c *ModerationController) BanUser(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	var req dto.BanUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.moderationService.BanUser(ctx, communityID, &req, middleware.GetUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "User banned successfully"}))
}

// UnbanUser handles lifting a user's ban
// @Summary Unban user
// @Description Lifts a user's ban. Requires the canBan capability. Idempotent: unbanning a user who is not banned succeeds. The membership is not restored.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param userId path int true "Target user ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "User unbanned successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/bans/{userId} [delete]
func (c *ModerationController) UnbanUser(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}
	targetUserID, ok := parsePathID(ctx, "userId")
	if !ok {
		return
	}

	if err := c.moderationService.UnbanUser(ctx, communityID, targetUserID, middleware.GetUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "User unbanned successfully"}))
}

// GetModerators handles listing a community's moderators
// @Summary List moderators
// @Description Lists the community's moderator roster with capabilities
// @Tags moderation
// @Accept json
// @Produce json
// @Param identifier path string true "Community ID, name or slug"
// @Success 200 {object} dto.APIResponse{data=[]dto.ModeratorResponse} "Moderators retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/moderators [get]
func (c *ModerationController) GetModerators(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	response, err := c.moderationService.GetModerators(ctx, communityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// AddModerator handles granting moderator capabilities
// @Summary Add moderator
// @Description Grants moderator capabilities to an active member. Requires the canInvite capability. Granting to an existing moderator overwrites the flags.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param request body dto.AddModeratorRequest true "Moderator grant"
// @Success 201 {object} dto.APIResponse{data=dto.ModeratorResponse} "Moderator added successfully"
// @Failure 400 {object} dto.ErrorResponse "User must be an active member"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/moderators [post]
func (c *ModerationController) AddModerator(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}

	var req dto.AddModeratorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.moderationService.AddModerator(ctx, communityID, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// UpdateModerator handles changing a moderator's capability flags
// @Summary Update moderator
// @Description Changes individual capability flags on an existing grant. Requires the canInvite capability. Omitted flags keep their value.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param userId path int true "Target user ID"
// @Param request body dto.UpdateModeratorRequest true "Flags to change"
// @Success 200 {object} dto.APIResponse{data=dto.ModeratorResponse} "Moderator updated successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Moderator not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/moderators/{userId} [put]
func (c *ModerationController) UpdateModerator(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}
	targetUserID, ok := parsePathID(ctx, "userId")
	if !ok {
		return
	}

	var req dto.UpdateModeratorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.moderationService.UpdateModerator(ctx, communityID, targetUserID, &req, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// RemoveModerator handles revoking a moderator grant
// @Summary Remove moderator
// @Description Revokes a moderator grant entirely. Requires the canInvite capability. The user stays a member.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Community ID, name or slug"
// @Param userId path int true "Target user ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Moderator removed successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Moderator not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /communities/{identifier}/moderators/{userId} [delete]
func (c *ModerationController) RemoveModerator(ctx *gin.Context) {
	communityID, ok := c.resolveCommunityID(ctx)
	if !ok {
		return
	}
	targetUserID, ok := parsePathID(ctx, "userId")
	if !ok {
		return
	}

	if err := c.moderationService.RemoveModerator(ctx, communityID, targetUserID, middleware.GetUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Moderator removed successfully"}))
}
