package models

import "time"

// ModeratorFlags holds the four independent moderator capabilities. A user
// with no grant row simply has no flags; there is no soft delete here.
type ModeratorFlags struct {
	CanModerate bool `json:"canModerate" db:"can_moderate"`
	CanBan      bool `json:"canBan" db:"can_ban"`
	CanInvite   bool `json:"canInvite" db:"can_invite"`
	CanEdit     bool `json:"canEdit" db:"can_edit"`
}

// AllModeratorFlags is the capability set the owner implicitly holds.
var AllModeratorFlags = ModeratorFlags{
	CanModerate: true,
	CanBan:      true,
	CanInvite:   true,
	CanEdit:     true,
}

// CommunityModerator represents a per-user, per-community moderator grant.
type CommunityModerator struct {
	ID          int64 `json:"id" db:"id"`
	CommunityID int64 `json:"communityId" db:"community_id"`
	UserID      int64 `json:"userId" db:"user_id"`
	ModeratorFlags
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	User *User `json:"user,omitempty"`
}
