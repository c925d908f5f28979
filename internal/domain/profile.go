package domain

import "time"

// UserProfile is the per-user profile row. The primary key is the subject id
// assigned by the external auth provider, so profiles need no separate users
// table.
type UserProfile struct {
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	AvatarBlurhash string    `json:"avatar_blurhash,omitempty"`
	TotalBooks     int       `json:"total_books"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity is the verified caller identity returned by the auth provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
