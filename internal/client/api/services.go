package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"mdd-forum/internal/client/model"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthResponse carries a fresh token, plus the user after profile updates.
type AuthResponse struct {
	Token string             `json:"token"`
	User  *model.UserProfile `json:"user,omitempty"`
}

// UpdateProfileRequest sends only the fields that are set.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Username == nil && r.Email == nil && r.Password == nil
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	TopicID int64  `json:"topicId"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
	PostID  int64  `json:"postId"`
}

type AuthService struct{ c *Client }

func NewAuthService(c *Client) *AuthService { return &AuthService{c: c} }

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Me(ctx context.Context) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type UserService struct{ c *Client }

func NewUserService(c *Client) *UserService { return &UserService{c: c} }

func (s *UserService) Profile(ctx context.Context) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.c.do(ctx, http.MethodPut, "/auth/me", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type PostService struct{ c *Client }

func NewPostService(c *Client) *PostService { return &PostService{c: c} }

func (s *PostService) List(ctx context.Context, sort model.Sort) ([]model.Post, error) {
	var posts []model.Post
	query := url.Values{"sort": {string(sort)}}
	if err := s.c.do(ctx, http.MethodGet, "/posts", query, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := s.c.do(ctx, http.MethodGet, idPath("/posts/%d", id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) ListByTopic(ctx context.Context, topicID int64) ([]model.Post, error) {
	var posts []model.Post
	if err := s.c.do(ctx, http.MethodGet, idPath("/posts/topic/%d", topicID), nil, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (*model.Post, error) {
	var post model.Post
	if err := s.c.do(ctx, http.MethodPost, "/posts", nil, req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	var comments []model.Comment
	query := url.Values{"postId": {strconv.FormatInt(postID, 10)}}
	if err := s.c.do(ctx, http.MethodGet, "/comments", query, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *PostService) CreateComment(ctx context.Context, req CreateCommentRequest) (*model.Comment, error) {
	var comment model.Comment
	if err := s.c.do(ctx, http.MethodPost, "/comments", nil, req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

type TopicService struct{ c *Client }

func NewTopicService(c *Client) *TopicService { return &TopicService{c: c} }

func (s *TopicService) List(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	if err := s.c.do(ctx, http.MethodGet, "/topics", nil, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (s *TopicService) Get(ctx context.Context, id int64) (*model.Topic, error) {
	var topic model.Topic
	if err := s.c.do(ctx, http.MethodGet, idPath("/topics/%d", id), nil, nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// Subscribe returns the caller's subscriptions after the change.
func (s *TopicService) Subscribe(ctx context.Context, id int64) ([]model.Topic, error) {
	var topics []model.Topic
	if err := s.c.do(ctx, http.MethodPost, idPath("/topics/%d/subscribe", id), nil, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (s *TopicService) Unsubscribe(ctx context.Context, id int64) ([]model.Topic, error) {
	var topics []model.Topic
	if err := s.c.do(ctx, http.MethodDelete, idPath("/topics/%d/subscribe", id), nil, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (s *TopicService) Subscriptions(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	if err := s.c.do(ctx, http.MethodGet, "/topics/subscriptions", nil, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}
