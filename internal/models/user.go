package models

import "time"

// User is a row in the Supabase users table. Password holds the bcrypt hash
// and must be cleared before the struct is returned to a client.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	GoogleID  string    `json:"google_id,omitempty"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Sanitized returns a copy safe to send to the client.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
