// Package router maps client paths to pages and enforces route guards.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"mdd-forum/internal/client/session"
)

const maxRedirects = 5

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrNoRoute          = errors.New("no route")
)

// Params holds the values of ":name" path segments.
type Params map[string]string

// Page is entered with a context that is cancelled when the client navigates away.
type Page interface {
	Enter(ctx context.Context, params Params) error
}

// PageFunc adapts a function to Page.
type PageFunc func(ctx context.Context, params Params) error

func (f PageFunc) Enter(ctx context.Context, params Params) error { return f(ctx, params) }

// Guard runs before a route activates. A non-empty return value is the
// path to go to instead.
type Guard func(path string) (redirect string)

// RequireLogin sends anonymous clients to the login page.
func RequireLogin(store *session.Store) Guard {
	return func(string) string {
		if store.IsLoggedIn() {
			return ""
		}
		return "/login"
	}
}

type route struct {
	pattern  []string
	page     Page
	guards   []Guard
	redirect string
}

type Router struct {
	base   context.Context
	logger *logrus.Logger

	mu        sync.Mutex
	routes    []route
	current   string
	params    Params
	pageCtx   context.Context
	cancel    context.CancelFunc
	observers map[int]func(path string)
	nextID    int
}

// New creates a router whose pages live at most as long as base.
func New(base context.Context, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	return &Router{
		base:      base,
		logger:    logger,
		pageCtx:   base,
		observers: make(map[int]func(string)),
	}
}

// Handle registers page under pattern. Routes are matched in registration order.
func (r *Router) Handle(pattern string, page Page, guards ...Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{pattern: split(pattern), page: page, guards: guards})
}

// Redirect makes pattern an alias of target. The pattern "**" matches any path.
func (r *Router) Redirect(pattern, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{pattern: split(pattern), redirect: target})
}

// Navigate resolves path, runs its guards and enters the resulting page.
// Navigation requested from an abandoned context is dropped.
func (r *Router) Navigate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := cleanPath(path)
	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return fmt.Errorf("navigate %s: %w", path, ErrTooManyRedirects)
		}

		rt, params, ok := r.match(target)
		if !ok {
			return fmt.Errorf("navigate %s: %w", target, ErrNoRoute)
		}
		if rt.page == nil {
			target = cleanPath(rt.redirect)
			continue
		}

		if redirect := runGuards(rt.guards, target); redirect != "" {
			r.logger.WithFields(logrus.Fields{"from": target, "to": redirect}).Debug("route guarded")
			target = cleanPath(redirect)
			continue
		}

		pageCtx := r.activate(target, params)
		r.notify(target)
		return rt.page.Enter(pageCtx, params)
	}
}

func runGuards(guards []Guard, path string) string {
	for _, guard := range guards {
		if redirect := guard(path); redirect != "" {
			return redirect
		}
	}
	return ""
}

func (r *Router) activate(path string, params Params) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.pageCtx, r.cancel = context.WithCancel(r.base)
	r.current = path
	r.params = params
	return r.pageCtx
}

// Current returns the active path, "" before the first navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Context returns the context of the active page.
func (r *Router) Context() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageCtx
}

// OnNavigate registers fn to be called with each newly activated path.
func (r *Router) OnNavigate(fn func(path string)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

// Close leaves the active page.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Router) notify(path string) {
	r.mu.Lock()
	observers := make([]func(string), 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.Unlock()

	for _, fn := range observers {
		fn(path)
	}
}

func (r *Router) match(path string) (route, Params, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	segments := split(path)
	for _, rt := range r.routes {
		if params, ok := matchSegments(rt.pattern, segments); ok {
			return rt, params, true
		}
	}
	return route{}, nil, false
}

func matchSegments(pattern, segments []string) (Params, bool) {
	if len(pattern) == 1 && pattern[0] == "**" {
		return Params{}, true
	}
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := Params{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func cleanPath(path string) string {
	return "/" + strings.Trim(strings.TrimSpace(path), "/")
}
