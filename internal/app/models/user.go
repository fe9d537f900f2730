package models

import "time"

// User defines the user model based on the 'users' table. Account management
// (registration, credentials) is handled by a sibling service; this engine
// only reads users.
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Username  string    `json:"username" db:"username" example:"jane_doe"`
	Name      string    `json:"name" db:"name" example:"Jane Doe"`
	AvatarURL *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	IsActive  bool      `json:"isActive" db:"is_active" example:"true"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
