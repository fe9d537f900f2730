package models

import "time"

// CommunityMember represents a user's membership in a community. A user has
// at most one row per community: leaving flips is_active to false and
// rejoining reactivates the same row with a fresh joined_at.
type CommunityMember struct {
	ID          int64      `json:"id" db:"id"`
	CommunityID int64      `json:"communityId" db:"community_id"`
	UserID      int64      `json:"userId" db:"user_id"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	IsMuted     bool       `json:"isMuted" db:"is_muted"`
	MutedUntil  *time.Time `json:"mutedUntil,omitempty" db:"muted_until"`
	JoinedAt    time.Time  `json:"joinedAt" db:"joined_at"`

	// Related entities
	User *User `json:"user,omitempty"`
}
