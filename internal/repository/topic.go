package repository

import (
	"context"

	"mdd-forum/internal/domain"
)

// TopicRepository exposes topic lookups and the user/topic subscription relation.
type TopicRepository interface {
	Init(ctx context.Context) error
	EnsureSeeded(ctx context.Context, topics []domain.Topic) error
	List(ctx context.Context) ([]domain.Topic, error)
	Get(ctx context.Context, id int64) (*domain.Topic, error)
	IsSubscribed(ctx context.Context, userID, topicID int64) (bool, error)
	AddSubscription(ctx context.Context, userID, topicID int64) error
	RemoveSubscription(ctx context.Context, userID, topicID int64) error
	ListSubscriptions(ctx context.Context, userID int64) ([]domain.Topic, error)
}
