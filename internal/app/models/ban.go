package models

import "time"

// CommunityBan represents a ban of a user from a community, permanent or
// time-boxed. Lifting a ban flips is_active to false without deleting the
// row, so the history survives. A row with is_active=true but an elapsed
// expires_at is treated as not in effect wherever it is consulted; expiry is
// evaluated lazily at check time, never by a background sweep.
type CommunityBan struct {
	ID          int64      `json:"id" db:"id"`
	CommunityID int64      `json:"communityId" db:"community_id"`
	UserID      int64      `json:"userId" db:"user_id"`
	Reason      string     `json:"reason" db:"reason"`
	IsPermanent bool       `json:"isPermanent" db:"is_permanent"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	BannedBy    int64      `json:"bannedBy" db:"banned_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// InEffect reports whether the ban blocks the user at the given instant.
func (b *CommunityBan) InEffect(now time.Time) bool {
	if b == nil || !b.IsActive {
		return false
	}
	if b.IsPermanent {
		return true
	}
	return b.ExpiresAt != nil && b.ExpiresAt.After(now)
}
