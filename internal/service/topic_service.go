package service

import (
	"context"
	"errors"

	"mdd-forum/internal/domain"
	"mdd-forum/internal/repository"
)

var (
	// ErrAlreadySubscribed is returned when subscribing to a topic twice.
	ErrAlreadySubscribed = errors.New("already subscribed to this topic")
	// ErrNotSubscribed is returned when unsubscribing from a topic the user does not follow.
	ErrNotSubscribed = errors.New("not subscribed to this topic")
)

// TopicService exposes topics and manages user subscriptions.
type TopicService interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	GetTopic(ctx context.Context, id int64) (*domain.Topic, error)
	Subscribe(ctx context.Context, userID, topicID int64) ([]domain.Topic, error)
	Unsubscribe(ctx context.Context, userID, topicID int64) ([]domain.Topic, error)
	Subscriptions(ctx context.Context, userID int64) ([]domain.Topic, error)
}

type topicService struct {
	topics repository.TopicRepository
}

func NewTopicService(topics repository.TopicRepository) TopicService {
	return &topicService{topics: topics}
}

func (s *topicService) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	return s.topics.List(ctx)
}

func (s *topicService) GetTopic(ctx context.Context, id int64) (*domain.Topic, error) {
	return s.topics.Get(ctx, id)
}

// Subscribe adds the topic and returns the refreshed subscription list.
func (s *topicService) Subscribe(ctx context.Context, userID, topicID int64) ([]domain.Topic, error) {
	if _, err := s.topics.Get(ctx, topicID); err != nil {
		return nil, err
	}
	subscribed, err := s.topics.IsSubscribed(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}
	if subscribed {
		return nil, ErrAlreadySubscribed
	}
	if err := s.topics.AddSubscription(ctx, userID, topicID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return s.topics.ListSubscriptions(ctx, userID)
}

// Unsubscribe removes the topic and returns the refreshed subscription list.
func (s *topicService) Unsubscribe(ctx context.Context, userID, topicID int64) ([]domain.Topic, error) {
	if _, err := s.topics.Get(ctx, topicID); err != nil {
		return nil, err
	}
	if err := s.topics.RemoveSubscription(ctx, userID, topicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, err
	}
	return s.topics.ListSubscriptions(ctx, userID)
}

func (s *topicService) Subscriptions(ctx context.Context, userID int64) ([]domain.Topic, error) {
	return s.topics.ListSubscriptions(ctx, userID)
}
