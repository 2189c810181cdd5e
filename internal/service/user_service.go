package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mdd-forum/internal/domain"
	"mdd-forum/internal/repository"
)

const minPasswordLength = 8

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email or username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUsernameTaken is returned when a profile update collides with another user's username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned when a profile update collides with another user's email.
	ErrEmailTaken = errors.New("email already taken")
	// ErrNotFound is reported when a referenced user, topic, post or subscription does not exist.
	ErrNotFound = repository.ErrNotFound
)

// ValidationError reports an input rule violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Profile(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	topics repository.TopicRepository
}

func NewUserService(users repository.UserRepository, topics repository.TopicRepository) UserService {
	return &userService{
		users:  users,
		topics: topics,
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "is required"}
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

// Authenticate accepts either the email or the username as identifier.
func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Profile returns the user together with the topics they follow.
func (s *userService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, err := s.topics.ListSubscriptions(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Subscriptions = subs
	return user, nil
}

// UpdateProfile applies only the non-empty fields of update.
func (s *userService) UpdateProfile(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if v := trimmed(update.Username); v != "" && v != user.Username {
		other, err := s.users.GetByUsername(ctx, v)
		if err == nil && other.ID != id {
			return nil, ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Username = v
		changed = true
	}
	if v := trimmed(update.Email); v != "" && v != user.Email {
		if err := validateEmail(v); err != nil {
			return nil, err
		}
		other, err := s.users.GetByEmail(ctx, v)
		if err == nil && other.ID != id {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = v
		changed = true
	}
	if v := trimmed(update.Password); v != "" {
		if err := validatePassword(v); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
		changed = true
	}

	if changed {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.Profile(ctx, id)
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Message: "is invalid"}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "is required"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	return nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
