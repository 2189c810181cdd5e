// Package model holds the client-side view of the forum resources as they
// travel over the wire.
package model

import (
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserProfile is a user together with the topics they follow.
type UserProfile struct {
	User
	Subscriptions []Topic `json:"subscriptions"`
}

type Topic struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Topic     Topic     `json:"topic"`
	User      User      `json:"user"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	User      User      `json:"user"`
}

// Sort is the feed ordering by creation date.
type Sort string

const (
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

// ParseSort accepts "asc" or "desc" in any case; anything else means desc.
func ParseSort(v string) Sort {
	if strings.EqualFold(strings.TrimSpace(v), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Toggle returns the opposite ordering.
func (s Sort) Toggle() Sort {
	if s == SortAsc {
		return SortDesc
	}
	return SortAsc
}
