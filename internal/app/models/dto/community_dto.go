package dto

import "time"

// CreateCommunityRequest represents a request to create a community
type CreateCommunityRequest struct {
	Name            string  `json:"name" binding:"required,min=3,max=50" example:"Go Developers"`
	Prefix          string  `json:"prefix" binding:"required,min=1,max=10" example:"c/"`
	DisplayName     string  `json:"displayName" binding:"required,min=1,max=100" example:"The Go Developers Hub"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Rules           *string `json:"rules,omitempty" binding:"omitempty,max=5000"`
	AvatarURL       *string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
	BannerURL       *string `json:"bannerUrl,omitempty" binding:"omitempty,url"`
	PrimaryColor    *string `json:"primaryColor,omitempty" binding:"omitempty,hexcolor" example:"#00ADD8"`
	IsPrivate       bool    `json:"isPrivate" example:"false"`
	RequireApproval bool    `json:"requireApproval" example:"false"`
	AllowImages     *bool   `json:"allowImages,omitempty"`
	AllowVideos     *bool   `json:"allowVideos,omitempty"`
	AllowPolls      *bool   `json:"allowPolls,omitempty"`
}

// UpdateCommunityRequest represents a partial update of community settings.
// Nil fields are left untouched.
type UpdateCommunityRequest struct {
	Name            *string `json:"name,omitempty" binding:"omitempty,min=3,max=50"`
	DisplayName     *string `json:"displayName,omitempty" binding:"omitempty,max=100"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Rules           *string `json:"rules,omitempty" binding:"omitempty,max=5000"`
	AvatarURL       *string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
	BannerURL       *string `json:"bannerUrl,omitempty" binding:"omitempty,url"`
	PrimaryColor    *string `json:"primaryColor,omitempty" binding:"omitempty,hexcolor"`
	IsPrivate       *bool   `json:"isPrivate,omitempty"`
	RequireApproval *bool   `json:"requireApproval,omitempty"`
	AllowImages     *bool   `json:"allowImages,omitempty"`
	AllowVideos     *bool   `json:"allowVideos,omitempty"`
	AllowPolls      *bool   `json:"allowPolls,omitempty"`
}

// CommunityQuery contains filter parameters for listing communities
type CommunityQuery struct {
	Search    string `form:"search" binding:"omitempty,max=100"`
	Prefix    string `form:"prefix" binding:"omitempty,max=10"`
	IsPrivate *bool  `form:"isPrivate"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=members posts newest name"`
}

// CommunityResponse represents a community in API responses
type CommunityResponse struct {
	ID              int64              `json:"id" example:"1"`
	Name            string             `json:"name" example:"Go Developers"`
	Slug            string             `json:"slug" example:"go-developers"`
	Prefix          string             `json:"prefix" example:"c/"`
	DisplayName     string             `json:"displayName"`
	Description     *string            `json:"description,omitempty"`
	Rules           *string            `json:"rules,omitempty"`
	AvatarURL       *string            `json:"avatarUrl,omitempty"`
	BannerURL       *string            `json:"bannerUrl,omitempty"`
	PrimaryColor    *string            `json:"primaryColor,omitempty"`
	IsPrivate       bool               `json:"isPrivate"`
	RequireApproval bool               `json:"requireApproval"`
	AllowImages     bool               `json:"allowImages"`
	AllowVideos     bool               `json:"allowVideos"`
	AllowPolls      bool               `json:"allowPolls"`
	MembersCount    int64              `json:"membersCount" example:"128"`
	PostsCount      int64              `json:"postsCount" example:"512"`
	Owner           *UserBasicResponse `json:"owner,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	Viewer          *ViewerContext     `json:"viewer,omitempty"`
}

// ViewerContext reports the requesting user's relationship to a community.
// Absent for anonymous requests.
type ViewerContext struct {
	IsOwner     bool `json:"isOwner"`
	IsModerator bool `json:"isModerator"`
	IsMember    bool `json:"isMember"`
	IsBanned    bool `json:"isBanned"`
}

// CommunityListResponse represents a paginated list of communities
type CommunityListResponse struct {
	Communities []CommunityResponse `json:"communities"`
	Pagination  PaginationInfo      `json:"pagination"`
}

// CommunityStatsResponse summarizes a community's activity counters
type CommunityStatsResponse struct {
	CommunityID    int64 `json:"communityId" example:"1"`
	MembersCount   int64 `json:"membersCount" example:"128"`
	PostsCount     int64 `json:"postsCount" example:"512"`
	PostsThisWeek  int64 `json:"postsThisWeek" example:"23"`
	PostsThisMonth int64 `json:"postsThisMonth" example:"87"`
	PendingPosts   int64 `json:"pendingPosts" example:"3"`
	BannedUsers    int64 `json:"bannedUsers" example:"2"`
	Moderators     int64 `json:"moderators" example:"4"`
}
