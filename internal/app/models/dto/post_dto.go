package dto

import "time"

// CreatePostRequest represents a request to create a post in a community
type CreatePostRequest struct {
	Title           string  `json:"title" binding:"required,min=1,max=300" example:"Generics in Go 1.23"`
	Content         *string `json:"content,omitempty" binding:"omitempty,max=40000"`
	Type            string  `json:"type" binding:"required,oneof=text image video link poll" example:"text"`
	ImageURL        *string `json:"imageUrl,omitempty" binding:"omitempty,url"`
	VideoURL        *string `json:"videoUrl,omitempty" binding:"omitempty,url"`
	LinkURL         *string `json:"linkUrl,omitempty" binding:"omitempty,url"`
	LinkTitle       *string `json:"linkTitle,omitempty" binding:"omitempty,max=300"`
	LinkDescription *string `json:"linkDescription,omitempty" binding:"omitempty,max=1000"`
}

// UpdatePostRequest represents a partial update of an existing post
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty" binding:"omitempty,min=1,max=300"`
	Content  *string `json:"content,omitempty" binding:"omitempty,max=40000"`
	IsPinned *bool   `json:"isPinned,omitempty"`
	IsLocked *bool   `json:"isLocked,omitempty"`
}

// PostQuery contains filter and sort parameters for listing posts
type PostQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=approved pending all"`
	Type   string `form:"type" binding:"omitempty,oneof=text image video link poll"`
	Search string `form:"search" binding:"omitempty,max=100"`
	Sort   string `form:"sort" binding:"omitempty,oneof=hot new top controversial"`
	Time   string `form:"time" binding:"omitempty,oneof=hour day week month year all"`
}

// VoteRequest represents a vote cast on a post
type VoteRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down" example:"up"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID              int64              `json:"id" example:"101"`
	CommunityID     int64              `json:"communityId" example:"1"`
	AuthorID        int64              `json:"authorId" example:"42"`
	Title           string             `json:"title"`
	Content         *string            `json:"content,omitempty"`
	Type            string             `json:"type" example:"text"`
	ImageURL        *string            `json:"imageUrl,omitempty"`
	VideoURL        *string            `json:"videoUrl,omitempty"`
	LinkURL         *string            `json:"linkUrl,omitempty"`
	LinkTitle       *string            `json:"linkTitle,omitempty"`
	LinkDescription *string            `json:"linkDescription,omitempty"`
	IsApproved      bool               `json:"isApproved"`
	IsPinned        bool               `json:"isPinned"`
	IsLocked        bool               `json:"isLocked"`
	Upvotes         int64              `json:"upvotes" example:"17"`
	Downvotes       int64              `json:"downvotes" example:"2"`
	Author          *UserBasicResponse `json:"author,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// PostListResponse represents a paginated list of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// VoteResponse reports the post's vote counters after a vote is applied
type VoteResponse struct {
	PostID    int64 `json:"postId" example:"101"`
	Upvotes   int64 `json:"upvotes" example:"18"`
	Downvotes int64 `json:"downvotes" example:"2"`
}
