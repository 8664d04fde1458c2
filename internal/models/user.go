package models

import "time"

// User represents a registered customer account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// LastLogin is refreshed on every successful login. Nil until the
	// user has logged in at least once.
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// UserProfile holds optional contact details kept separate from the
// credentials row.
type UserProfile struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone,omitempty"`
}
