package session

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mdd-forum/internal/client/model"
)

func newStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	store, err := NewStore(storage, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestLogInAndLogOut(t *testing.T) {
	storage := NewMemoryStorage()
	store := newStore(t, storage)

	if store.IsLoggedIn() || store.Token() != "" {
		t.Fatalf("fresh store must be logged out")
	}

	user := &model.UserProfile{User: model.User{ID: 1, Username: "alice"}}
	if err := store.LogIn("tok-1", user); err != nil {
		t.Fatalf("log in: %v", err)
	}
	if !store.IsLoggedIn() || store.Token() != "tok-1" || store.User() != user {
		t.Fatalf("unexpected state after login: %+v", store.State())
	}
	if v, ok, _ := storage.Get(TokenKey); !ok || v != "tok-1" {
		t.Fatalf("token not persisted, got %q", v)
	}

	if err := store.LogOut(); err != nil {
		t.Fatalf("log out: %v", err)
	}
	if store.IsLoggedIn() || store.Token() != "" || store.User() != nil {
		t.Fatalf("unexpected state after logout: %+v", store.State())
	}
	if _, ok, _ := storage.Get(TokenKey); ok {
		t.Fatalf("token still persisted after logout")
	}
}

func TestLogInRejectsEmptyToken(t *testing.T) {
	store := newStore(t, nil)
	if err := store.LogIn("", nil); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestRefreshedTokenDropsStaleUser(t *testing.T) {
	store := newStore(t, nil)
	user := &model.UserProfile{User: model.User{ID: 1}}
	if err := store.LogIn("tok-1", user); err != nil {
		t.Fatalf("log in: %v", err)
	}
	if err := store.LogIn("tok-1", nil); err != nil {
		t.Fatalf("log in again: %v", err)
	}
	if store.User() != user {
		t.Fatalf("same token must keep cached user")
	}
	if err := store.LogIn("tok-2", nil); err != nil {
		t.Fatalf("log in with new token: %v", err)
	}
	if store.User() != nil {
		t.Fatalf("new token must drop cached user")
	}
}

func TestSetUserWithoutTokenIsIgnored(t *testing.T) {
	store := newStore(t, nil)
	store.SetUser(&model.UserProfile{User: model.User{ID: 1}})
	if store.User() != nil {
		t.Fatalf("user cached without a token")
	}
}

func TestRestoresPersistedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdd", "session.json")
	first := newStore(t, NewFileStorage(path))
	if err := first.LogIn("persisted", nil); err != nil {
		t.Fatalf("log in: %v", err)
	}

	second := newStore(t, NewFileStorage(path))
	if second.Token() != "persisted" {
		t.Fatalf("expected restored token, got %q", second.Token())
	}
	if second.User() != nil {
		t.Fatalf("user must load lazily")
	}
}

func TestSubscribeDeliversCurrentStateAndChanges(t *testing.T) {
	store := newStore(t, nil)
	if err := store.LogIn("tok", nil); err != nil {
		t.Fatalf("log in: %v", err)
	}

	var states []State
	unsubscribe := store.Subscribe(func(s State) { states = append(states, s) })
	if len(states) != 1 || states[0].Token != "tok" {
		t.Fatalf("expected immediate delivery of current state, got %+v", states)
	}

	store.SetUser(&model.UserProfile{User: model.User{Username: "alice"}})
	if err := store.LogOut(); err != nil {
		t.Fatalf("log out: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}
	if states[1].User == nil || states[1].User.Username != "alice" {
		t.Fatalf("expected user in second state, got %+v", states[1])
	}
	if states[2].LoggedIn() {
		t.Fatalf("expected logged out state last")
	}

	unsubscribe()
	unsubscribe()
	if err := store.LogIn("again", nil); err != nil {
		t.Fatalf("log in: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("unsubscribed callback still called")
	}
}

func TestInvalidateOnlyOnce(t *testing.T) {
	store := newStore(t, nil)
	if err := store.LogIn("tok", nil); err != nil {
		t.Fatalf("log in: %v", err)
	}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Invalidate("tok") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one invalidation, got %d", wins.Load())
	}
	if store.IsLoggedIn() {
		t.Fatalf("expected logged out")
	}
}

func TestInvalidateIgnoresStaleToken(t *testing.T) {
	store := newStore(t, nil)
	if err := store.LogIn("fresh", nil); err != nil {
		t.Fatalf("log in: %v", err)
	}
	if store.Invalidate("old") || store.Invalidate("") {
		t.Fatalf("stale or empty token must not log out")
	}
	if store.Token() != "fresh" {
		t.Fatalf("fresh session lost")
	}
}

func TestOAuthTokenReadsExpiry(t *testing.T) {
	store := newStore(t, nil)
	if store.OAuthToken() != nil {
		t.Fatalf("expected nil token when logged out")
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := store.LogIn(signed, nil); err != nil {
		t.Fatalf("log in: %v", err)
	}

	tok := store.OAuthToken()
	if tok.AccessToken != signed || tok.Type() != "Bearer" {
		t.Fatalf("unexpected token %+v", tok)
	}
	if !tok.Expiry.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, tok.Expiry)
	}
	if d := store.ExpiresIn(exp.Add(-time.Minute)); d != time.Minute {
		t.Fatalf("expected 1m remaining, got %v", d)
	}
}

func TestOAuthTokenOpaque(t *testing.T) {
	store := newStore(t, nil)
	if err := store.LogIn("opaque", nil); err != nil {
		t.Fatalf("log in: %v", err)
	}
	tok := store.OAuthToken()
	if tok == nil || !tok.Expiry.IsZero() {
		t.Fatalf("opaque token must have no expiry, got %+v", tok)
	}
}
