package dto

import "time"

// BanUserRequest represents a request to ban a user from a community
type BanUserRequest struct {
	UserID      int64      `json:"userId" binding:"required,min=1" example:"42"`
	Reason      *string    `json:"reason,omitempty" binding:"omitempty,max=500" example:"Repeated spam"`
	IsPermanent bool       `json:"isPermanent" example:"false"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" example:"2025-06-01T00:00:00Z"`
}

// UnbanUserRequest represents a request to lift a user's ban
type UnbanUserRequest struct {
	UserID int64 `json:"userId" binding:"required,min=1" example:"42"`
}

// AddModeratorRequest represents a request to grant moderator capabilities
type AddModeratorRequest struct {
	UserID      int64 `json:"userId" binding:"required,min=1" example:"42"`
	CanModerate bool  `json:"canModerate" example:"true"`
	CanBan      bool  `json:"canBan" example:"false"`
	CanInvite   bool  `json:"canInvite" example:"false"`
	CanEdit     bool  `json:"canEdit" example:"false"`
}

// UpdateModeratorRequest represents a partial update of a moderator's
// capability flags. Nil fields keep their current value.
type UpdateModeratorRequest struct {
	CanModerate *bool `json:"canModerate,omitempty"`
	CanBan      *bool `json:"canBan,omitempty"`
	CanInvite   *bool `json:"canInvite,omitempty"`
	CanEdit     *bool `json:"canEdit,omitempty"`
}

// ModeratorResponse represents a moderator grant in API responses
type ModeratorResponse struct {
	ID          int64              `json:"id" example:"7"`
	CommunityID int64              `json:"communityId" example:"1"`
	UserID      int64              `json:"userId" example:"42"`
	CanModerate bool               `json:"canModerate"`
	CanBan      bool               `json:"canBan"`
	CanInvite   bool               `json:"canInvite"`
	CanEdit     bool               `json:"canEdit"`
	User        *UserBasicResponse `json:"user,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// MemberResponse represents a community member in API responses
type MemberResponse struct {
	ID          int64              `json:"id" example:"15"`
	CommunityID int64              `json:"communityId" example:"1"`
	UserID      int64              `json:"userId" example:"42"`
	IsMuted     bool               `json:"isMuted"`
	MutedUntil  *time.Time         `json:"mutedUntil,omitempty"`
	JoinedAt    time.Time          `json:"joinedAt"`
	User        *UserBasicResponse `json:"user,omitempty"`
}

// MemberListResponse represents a paginated list of community members
type MemberListResponse struct {
	Members    []MemberResponse `json:"members"`
	Pagination PaginationInfo   `json:"pagination"`
}
