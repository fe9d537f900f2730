package dto

// UserBasicResponse is the compact user representation embedded in
// community, membership and post payloads.
type UserBasicResponse struct {
	ID        int64   `json:"id" example:"42"`
	Username  string  `json:"username" example:"jdoe"`
	Name      string  `json:"name" example:"Jane Doe"`
	AvatarURL *string `json:"avatarUrl,omitempty" example:"https://cdn.commune.social/avatars/42.png"`
}
