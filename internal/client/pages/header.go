package pages

import (
	"context"
	"fmt"
	"io"
	"sync"

	"mdd-forum/internal/client/session"
)

// RouteSource is the part of the router the header follows.
type RouteSource interface {
	Navigator
	Current() string
	OnNavigate(fn func(path string)) (unsubscribe func())
}

// Header tracks menu visibility and the logged-in user across navigations.
type Header struct {
	store  *session.Store
	routes RouteSource

	mu       sync.Mutex
	path     string
	loggedIn bool
	username string
	stop     []func()
}

func NewHeader(store *session.Store, routes RouteSource) *Header {
	h := &Header{store: store, routes: routes, path: routes.Current()}
	h.stop = append(h.stop,
		routes.OnNavigate(func(path string) {
			h.mu.Lock()
			h.path = path
			h.mu.Unlock()
		}),
		store.Subscribe(func(s session.State) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.loggedIn = s.LoggedIn()
			h.username = ""
			if s.User != nil {
				h.username = s.User.Username
			}
		}),
	)
	return h
}

// ShowMenu is false on the landing page.
func (h *Header) ShowMenu() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path != "/"
}

// ShowNavLinks is false on the login and register screens.
func (h *Header) ShowNavLinks() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path != "/login" && h.path != "/register"
}

func (h *Header) Username() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.username
}

func (h *Header) LoggedIn() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loggedIn
}

// Logout ends the session and goes back to the landing page.
func (h *Header) Logout(ctx context.Context) error {
	if err := h.store.LogOut(); err != nil {
		return err
	}
	return h.routes.Navigate(ctx, "/")
}

func (h *Header) Close() {
	h.mu.Lock()
	stops := h.stop
	h.stop = nil
	h.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

func (h *Header) Render(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.path == "/" {
		return nil
	}
	line := "MDD"
	if h.path != "/login" && h.path != "/register" && h.loggedIn {
		line += "  |  Articles  Thèmes  Profil"
		if h.username != "" {
			line += "  (" + h.username + ")"
		}
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
