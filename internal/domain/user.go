package domain

import "time"

// User represents a registered forum member.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	// Subscriptions is only populated when a profile is requested.
	Subscriptions []Topic
}

// UserUpdate carries the profile fields a user asked to change.
// Nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}
