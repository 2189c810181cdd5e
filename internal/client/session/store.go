// Package session tracks who is logged in on this client.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"mdd-forum/internal/client/model"
)

// TokenKey is the storage key holding the bearer token.
const TokenKey = "auth_token"

// State is a snapshot of the session delivered to subscribers.
type State struct {
	Token string
	User  *model.UserProfile
}

func (s State) LoggedIn() bool { return s.Token != "" }

// Store holds the bearer token and the cached profile of the current user.
// A user is never cached without a token.
type Store struct {
	storage Storage
	logger  *logrus.Logger

	mu     sync.RWMutex
	token  string
	user   *model.UserProfile
	subs   map[int]func(State)
	nextID int
}

// NewStore restores a previously persisted token, if any.
func NewStore(storage Storage, logger *logrus.Logger) (*Store, error) {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if logger == nil {
		logger = logrus.New()
	}
	token, _, err := storage.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &Store{
		storage: storage,
		logger:  logger,
		token:   token,
		subs:    make(map[int]func(State)),
	}, nil
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current bearer token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the last known profile, nil if not loaded yet.
func (s *Store) User() *model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Token: s.token, User: s.user}
}

// LogIn persists token and optionally caches user. A nil user keeps the
// cached profile only when the token is unchanged.
func (s *Store) LogIn(token string, user *model.UserProfile) error {
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := s.storage.Set(TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	s.mu.Lock()
	if user != nil || s.token != token {
		s.user = user
	}
	s.token = token
	s.mu.Unlock()

	s.publish()
	return nil
}

// SetUser caches the profile of the logged-in user.
func (s *Store) SetUser(user *model.UserProfile) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		s.logger.Debug("ignoring profile without a session")
		return
	}
	s.user = user
	s.mu.Unlock()

	s.publish()
}

func (s *Store) LogOut() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	err := s.storage.Remove(TokenKey)
	s.publish()
	if err != nil {
		return fmt.Errorf("forget token: %w", err)
	}
	return nil
}

// Invalidate logs out only if token is still the current token and reports
// whether it did. Concurrent callers holding the same token see true once.
func (s *Store) Invalidate(token string) bool {
	s.mu.Lock()
	if token == "" || s.token != token {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Remove(TokenKey); err != nil {
		s.logger.Warnf("forget token: %v", err)
	}
	s.publish()
	return true
}

// OAuthToken exposes the bearer token with the expiry read from its exp
// claim. The signature is not verified here.
func (s *Store) OAuthToken() *oauth2.Token {
	token := s.Token()
	if token == "" {
		return nil
	}
	tok := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
	}
	return tok
}

// ExpiresIn reports the remaining lifetime of the token, zero when unknown.
func (s *Store) ExpiresIn(now time.Time) time.Duration {
	tok := s.OAuthToken()
	if tok == nil || tok.Expiry.IsZero() {
		return 0
	}
	return tok.Expiry.Sub(now)
}

// Subscribe registers fn for every session change. fn is called right away
// with the current state.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	state := State{Token: s.token, User: s.user}
	s.mu.Unlock()

	fn(state)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) publish() {
	s.mu.RLock()
	state := State{Token: s.token, User: s.user}
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(state)
	}
}
