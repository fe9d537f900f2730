package models

import "time"

// PostType tags the kind of content a community post carries.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
	PostTypeVideo PostType = "video"
	PostTypeLink  PostType = "link"
	PostTypePoll  PostType = "poll"
)

// VoteDirection is the direction of a vote on a community post.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// CommunityPost belongs to exactly one community and one author. Posts are
// soft-deleted via is_active; is_approved is stamped once at creation from
// the community's require_approval policy and only changes through an
// explicit moderator approval.
type CommunityPost struct {
	ID              int64     `json:"id" db:"id"`
	CommunityID     int64     `json:"communityId" db:"community_id"`
	AuthorID        int64     `json:"authorId" db:"author_id"`
	Title           string    `json:"title" db:"title"`
	Content         *string   `json:"content,omitempty" db:"content"`
	Type            PostType  `json:"type" db:"type"`
	ImageURL        *string   `json:"imageUrl,omitempty" db:"image_url"`
	VideoURL        *string   `json:"videoUrl,omitempty" db:"video_url"`
	LinkURL         *string   `json:"linkUrl,omitempty" db:"link_url"`
	LinkTitle       *string   `json:"linkTitle,omitempty" db:"link_title"`
	LinkDescription *string   `json:"linkDescription,omitempty" db:"link_description"`
	IsApproved      bool      `json:"isApproved" db:"is_approved"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	IsPinned        bool      `json:"isPinned" db:"is_pinned"`
	IsLocked        bool      `json:"isLocked" db:"is_locked"`
	Upvotes         int64     `json:"upvotes" db:"upvotes"`
	Downvotes       int64     `json:"downvotes" db:"downvotes"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Author    *User      `json:"author,omitempty"`
	Community *Community `json:"community,omitempty"`
}
