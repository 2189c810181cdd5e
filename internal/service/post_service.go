package service

import (
	"context"
	"strings"

	"mdd-forum/internal/domain"
	"mdd-forum/internal/repository"
)

// PostService coordinates feed reads and post/comment creation.
type PostService interface {
	Feed(ctx context.Context, userID int64, order domain.SortOrder) ([]domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	ListByTopic(ctx context.Context, topicID int64) ([]domain.Post, error)
	CreatePost(ctx context.Context, userID, topicID int64, title, content string) (*domain.Post, error)
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
	CreateComment(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error)
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	topics   repository.TopicRepository
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository, topics repository.TopicRepository) PostService {
	return &postService{
		posts:    posts,
		comments: comments,
		topics:   topics,
	}
}

// Feed lists posts of the topics the user follows, ordered by creation date.
func (s *postService) Feed(ctx context.Context, userID int64, order domain.SortOrder) ([]domain.Post, error) {
	if order != domain.SortAsc {
		order = domain.SortDesc
	}
	return s.posts.ListFeed(ctx, userID, order)
}

func (s *postService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.Get(ctx, id)
}

func (s *postService) ListByTopic(ctx context.Context, topicID int64) ([]domain.Post, error) {
	if _, err := s.topics.Get(ctx, topicID); err != nil {
		return nil, err
	}
	return s.posts.ListByTopic(ctx, topicID)
}

func (s *postService) CreatePost(ctx context.Context, userID, topicID int64, title, content string) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "is required"}
	}
	if _, err := s.topics.Get(ctx, topicID); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:   title,
		Content: content,
		TopicID: topicID,
		UserID:  userID,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, post.ID)
}

func (s *postService) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *postService) CreateComment(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "is required"}
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.Get(ctx, comment.ID)
}
