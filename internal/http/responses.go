package http

import (
	"time"

	"mdd-forum/internal/domain"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user,omitempty"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type UserProfile struct {
	UserResponse
	Subscriptions []TopicResponse `json:"subscriptions"`
}

type TopicResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type PostResponse struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
	Topic     TopicResponse `json:"topic"`
	User      UserResponse  `json:"user"`
}

type CommentResponse struct {
	ID        int64        `json:"id"`
	PostID    int64        `json:"postId"`
	Content   string       `json:"content"`
	CreatedAt string       `json:"createdAt"`
	User      UserResponse `json:"user"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

func profileToResponse(user domain.User) *UserProfile {
	return &UserProfile{
		UserResponse:  userToResponse(user),
		Subscriptions: topicsToResponse(user.Subscriptions),
	}
}

func topicToResponse(topic domain.Topic) TopicResponse {
	return TopicResponse{
		ID:          topic.ID,
		Title:       topic.Title,
		Description: topic.Description,
		CreatedAt:   formatTime(topic.CreatedAt),
		UpdatedAt:   formatTime(topic.UpdatedAt),
	}
}

func topicsToResponse(topics []domain.Topic) []TopicResponse {
	resp := make([]TopicResponse, len(topics))
	for i := range topics {
		resp[i] = topicToResponse(topics[i])
	}
	return resp
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: formatTime(post.CreatedAt),
		UpdatedAt: formatTime(post.UpdatedAt),
		Topic:     topicToResponse(post.Topic),
		User:      userToResponse(post.Author),
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: formatTime(comment.CreatedAt),
		User:      userToResponse(comment.Author),
	}
}
