package domain

import "time"

// Topic is a subscribable subject under which posts are organized.
type Topic struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
