package domain

import (
	"strings"
	"time"
)

// SortOrder controls the creation date ordering of a post feed.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps a query value onto a SortOrder, defaulting to newest first.
func ParseSortOrder(v string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(v), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Post is an article published by a user under a topic.
type Post struct {
	ID        int64
	Title     string
	Content   string
	TopicID   int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time

	// Topic and Author are snapshots joined in by the repository.
	Topic  Topic
	Author User
}

// Comment is a reply attached to a single post.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	Author User
}
