package models

import "time"

// Community represents a named, user-owned space containing posts and members.
// Communities are soft-deleted: is_active=false hides them everywhere but the
// row is never removed. MembersCount and PostsCount are cached counters kept
// consistent by full recounts after every mutation that can change them.
type Community struct {
	ID              int64     `json:"id" db:"id" example:"1"`
	Name            string    `json:"name" db:"name" example:"golang"`
	Slug            string    `json:"slug" db:"slug" example:"golang"`
	Prefix          string    `json:"prefix" db:"prefix" example:"c/"`
	DisplayName     string    `json:"displayName" db:"display_name" example:"The Go Community"`
	Description     *string   `json:"description,omitempty" db:"description"`
	Rules           *string   `json:"rules,omitempty" db:"rules"`
	AvatarURL       *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	BannerURL       *string   `json:"bannerUrl,omitempty" db:"banner_url"`
	PrimaryColor    *string   `json:"primaryColor,omitempty" db:"primary_color"`
	OwnerID         int64     `json:"ownerId" db:"owner_id" example:"1"`
	IsActive        bool      `json:"isActive" db:"is_active" example:"true"`
	IsPrivate       bool      `json:"isPrivate" db:"is_private" example:"false"`
	RequireApproval bool      `json:"requireApproval" db:"require_approval" example:"false"`
	AllowImages     bool      `json:"allowImages" db:"allow_images" example:"true"`
	AllowVideos     bool      `json:"allowVideos" db:"allow_videos" example:"true"`
	AllowPolls      bool      `json:"allowPolls" db:"allow_polls" example:"true"`
	MembersCount    int64     `json:"membersCount" db:"members_count" example:"42"`
	PostsCount      int64     `json:"postsCount" db:"posts_count" example:"7"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Owner *User `json:"owner,omitempty"`
}
