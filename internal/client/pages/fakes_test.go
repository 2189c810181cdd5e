package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/model"
	"mdd-forum/internal/client/session"
)

var errBoom = &api.Error{StatusCode: http.StatusInternalServerError, Message: "boom"}

var errExpired = &api.Error{StatusCode: http.StatusUnauthorized, Message: "invalid or expired token"}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message)
}

func (n *notices) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) == 0 {
		return ""
	}
	return n.msgs[len(n.msgs)-1]
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNav) Navigate(ctx context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return nil
}

func (n *fakeNav) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type fakeAuth struct {
	token    string
	loginErr error
	meErr    error
	user     *model.UserProfile
	calls    int
}

func (f *fakeAuth) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	f.calls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.AuthResponse{Token: f.token}, nil
}

func (f *fakeAuth) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	f.calls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.AuthResponse{Token: f.token}, nil
}

func (f *fakeAuth) Me(ctx context.Context) (*model.UserProfile, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	profile model.UserProfile
	updates []api.UpdateProfileRequest
	token   string
	err     error
}

func (f *fakeUsers) Profile(ctx context.Context) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profile
	return &p, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.err != nil {
		return nil, f.err
	}
	if req.Username != nil {
		f.profile.Username = *req.Username
	}
	if req.Email != nil {
		f.profile.Email = *req.Email
	}
	return &api.AuthResponse{Token: f.token}, nil
}

type fakePosts struct {
	mu       sync.Mutex
	sorts    []model.Sort
	posts    map[int64]model.Post
	comments []model.Comment
	created  []api.CreatePostRequest
	err      error
	// before runs ahead of every read, like the transport redirecting on 401.
	before func()
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[int64]model.Post{
		1: {ID: 1, Title: "Older"},
		2: {ID: 2, Title: "Newer"},
	}}
}

func (f *fakePosts) List(ctx context.Context, sort model.Sort) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sorts = append(f.sorts, sort)
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	if sort == model.SortAsc {
		return []model.Post{f.posts[1], f.posts[2]}, nil
	}
	return []model.Post{f.posts[2], f.posts[1]}, nil
}

func (f *fakePosts) Get(ctx context.Context, id int64) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, &api.Error{StatusCode: http.StatusNotFound, Message: "post not found"}
	}
	return &post, nil
}

func (f *fakePosts) Create(ctx context.Context, req api.CreatePostRequest) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.err != nil {
		return nil, f.err
	}
	post := model.Post{ID: int64(len(f.posts) + 1), Title: req.Title, Content: req.Content}
	f.posts[post.ID] = post
	return &post, nil
}

func (f *fakePosts) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakePosts) CreateComment(ctx context.Context, req api.CreateCommentRequest) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := model.Comment{ID: int64(len(f.comments) + 1), PostID: req.PostID, Content: req.Content}
	f.comments = append(f.comments, c)
	return &c, nil
}

type fakeTopics struct {
	mu         sync.Mutex
	all        []model.Topic
	subscribed map[int64]bool
	calls      []string
	subsErr    error
	subsBefore func()
}

func newFakeTopics() *fakeTopics {
	return &fakeTopics{
		all: []model.Topic{
			{ID: 1, Title: "Go"},
			{ID: 2, Title: "Angular"},
		},
		subscribed: map[int64]bool{},
	}
}

func (f *fakeTopics) List(ctx context.Context) ([]model.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	return f.all, nil
}

func (f *fakeTopics) Subscribe(ctx context.Context, id int64) ([]model.Topic, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("subscribe %d", id))
	if f.subscribed[id] {
		f.mu.Unlock()
		return nil, &api.Error{StatusCode: http.StatusConflict, Message: "already subscribed"}
	}
	f.subscribed[id] = true
	f.mu.Unlock()
	return f.subs(), nil
}

func (f *fakeTopics) Unsubscribe(ctx context.Context, id int64) ([]model.Topic, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("unsubscribe %d", id))
	delete(f.subscribed, id)
	f.mu.Unlock()
	return f.subs(), nil
}

func (f *fakeTopics) Subscriptions(ctx context.Context) ([]model.Topic, error) {
	f.mu.Lock()
	err := f.subsErr
	before := f.subsBefore
	f.calls = append(f.calls, "subscriptions")
	f.mu.Unlock()
	if before != nil {
		before()
	}
	if err != nil {
		return nil, err
	}
	return f.subs(), nil
}

func (f *fakeTopics) subs() []model.Topic {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Topic{}
	for _, t := range f.all {
		if f.subscribed[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeTopics) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(session.NewMemoryStorage(), nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return store
}

func requireFormError(t *testing.T, err error, fields ...string) {
	t.Helper()
	var formErr *FormError
	if !errors.As(err, &formErr) {
		t.Fatalf("expected form error, got %v", err)
	}
	for _, f := range fields {
		if !formErr.Has(f) {
			t.Fatalf("expected %s to be invalid, got %v", f, formErr.Fields)
		}
	}
}
