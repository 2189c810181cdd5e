package repository

import (
	"context"

	"mdd-forum/internal/domain"
)

// PostRepository persists posts and builds the subscription feed.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	ListFeed(ctx context.Context, userID int64, order domain.SortOrder) ([]domain.Post, error)
	ListByTopic(ctx context.Context, topicID int64) ([]domain.Post, error)
}

// CommentRepository persists comments attached to posts.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}
