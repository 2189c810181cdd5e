package pages

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"mdd-forum/internal/client/model"
	"mdd-forum/internal/client/router"
)

func TestLoginSuccess(t *testing.T) {
	store := newStore(t)
	nav := &fakeNav{}
	auth := &fakeAuth{token: "tok", user: &model.UserProfile{User: model.User{ID: 1, Username: "alice"}}}
	page := NewLogin(auth, store, nav)

	if err := page.Enter(context.Background(), nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := page.Submit(context.Background(), LoginForm{Identifier: "alice", Password: "secret"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if store.Token() != "tok" || store.User() == nil || store.User().Username != "alice" {
		t.Fatalf("unexpected session %+v", store.State())
	}
	if nav.last() != "/posts" {
		t.Fatalf("expected navigation to /posts, got %q", nav.last())
	}
	if page.OnError() {
		t.Fatalf("unexpected error flag")
	}
}

func TestLoginFailureSetsInlineError(t *testing.T) {
	store := newStore(t)
	nav := &fakeNav{}
	page := NewLogin(&fakeAuth{loginErr: errBoom}, store, nav)

	if err := page.Submit(context.Background(), LoginForm{Identifier: "alice", Password: "bad"}); !errors.Is(err, errBoom) {
		t.Fatalf("expected login error, got %v", err)
	}
	if !page.OnError() || store.IsLoggedIn() || nav.last() != "" {
		t.Fatalf("failure must flag the form and stay put")
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Une erreur est survenue") {
		t.Fatalf("inline error not rendered: %q", buf.String())
	}

	page.Enter(context.Background(), nil)
	if page.OnError() {
		t.Fatalf("entering again must clear the error")
	}
}

func TestLoginProfileFailure(t *testing.T) {
	store := newStore(t)
	nav := &fakeNav{}
	page := NewLogin(&fakeAuth{token: "tok", meErr: errBoom}, store, nav)

	if err := page.Submit(context.Background(), LoginForm{Identifier: "alice", Password: "secret"}); err == nil {
		t.Fatalf("expected error")
	}
	if !page.OnError() || nav.last() != "" {
		t.Fatalf("profile failure must set the inline error")
	}
}

func TestLoginValidationSendsNothing(t *testing.T) {
	auth := &fakeAuth{token: "tok"}
	page := NewLogin(auth, newStore(t), &fakeNav{})

	err := page.Submit(context.Background(), LoginForm{})
	requireFormError(t, err, "identifier", "password")
	if auth.calls != 0 {
		t.Fatalf("invalid form reached the server")
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		form   RegisterForm
		fields []string
	}{
		{"empty", RegisterForm{}, []string{"username", "email", "password"}},
		{"bad email", RegisterForm{Username: "a", Email: "nope", Password: "password123"}, []string{"email"}},
		{"short password", RegisterForm{Username: "a", Email: "a@b.co", Password: "short"}, []string{"password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{token: "tok"}
			page := NewRegister(auth, newStore(t), &fakeNav{})
			requireFormError(t, page.Submit(context.Background(), tc.form), tc.fields...)
			if auth.calls != 0 {
				t.Fatalf("invalid form reached the server")
			}
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	store := newStore(t)
	nav := &fakeNav{}
	auth := &fakeAuth{token: "tok", user: &model.UserProfile{User: model.User{Username: "bob"}}}
	page := NewRegister(auth, store, nav)

	if err := page.Submit(context.Background(), RegisterForm{Username: "bob", Email: "bob@example.com", Password: "password123"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !store.IsLoggedIn() || nav.last() != "/posts" {
		t.Fatalf("expected logged in and on /posts")
	}
}

func TestHomeRedirectsLoggedIn(t *testing.T) {
	store := newStore(t)
	nav := &fakeNav{}
	page := NewHome(store, nav)

	page.Enter(context.Background(), nil)
	if nav.last() != "" {
		t.Fatalf("anonymous visitor must stay home")
	}
	store.LogIn("tok", nil)
	page.Enter(context.Background(), nil)
	if nav.last() != "/posts" {
		t.Fatalf("expected redirect to /posts, got %q", nav.last())
	}
}

func TestPostsToggleSortRefetches(t *testing.T) {
	api := newFakePosts()
	page := NewPosts(api, &notices{})
	ctx := context.Background()

	if err := page.Enter(ctx, nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if page.Sort() != model.SortDesc || page.Items()[0].ID != 2 {
		t.Fatalf("expected newest first by default")
	}

	if err := page.ToggleSort(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if page.Sort() != model.SortAsc || page.Items()[0].ID != 1 {
		t.Fatalf("expected oldest first after toggle")
	}
	if err := page.ToggleSort(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	want := []model.Sort{model.SortDesc, model.SortAsc, model.SortDesc}
	if len(api.sorts) != len(want) {
		t.Fatalf("expected %d fetches, got %v", len(want), api.sorts)
	}
	for i := range want {
		if api.sorts[i] != want[i] {
			t.Fatalf("fetch %d used %s, want %s", i, api.sorts[i], want[i])
		}
	}
}

func TestPostsLateResponseDropped(t *testing.T) {
	api := newFakePosts()
	page := NewPosts(api, &notices{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := page.Enter(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if page.Items() != nil {
		t.Fatalf("late response must not be applied")
	}
}

func TestPostsLoadFailureNotifies(t *testing.T) {
	api := newFakePosts()
	api.err = errBoom
	n := &notices{}
	page := NewPosts(api, n)

	if err := page.Enter(context.Background(), nil); !errors.Is(err, errBoom) {
		t.Fatalf("expected error, got %v", err)
	}
	if n.last() != "Impossible de charger les articles" {
		t.Fatalf("unexpected notice %q", n.last())
	}
}

func TestPostDetail(t *testing.T) {
	api := newFakePosts()
	nav := &fakeNav{}
	n := &notices{}
	page := NewPostDetail(api, nav, n)
	ctx := context.Background()

	if err := page.Enter(ctx, router.Params{"id": "abc"}); err != nil {
		t.Fatalf("enter invalid id: %v", err)
	}
	if nav.last() != "/posts" {
		t.Fatalf("invalid id must go back to /posts")
	}

	if err := page.Enter(ctx, router.Params{"id": "1"}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if page.Post().Title != "Older" {
		t.Fatalf("unexpected post %+v", page.Post())
	}

	requireFormError(t, page.AddComment(ctx, CommentForm{Content: "no"}), "content")

	if err := page.AddComment(ctx, CommentForm{Content: "Great read"}); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if got := page.Comments(); len(got) != 1 || got[0].Content != "Great read" {
		t.Fatalf("comment not appended: %v", got)
	}
	if n.last() != "Commentaire ajouté avec succès" {
		t.Fatalf("unexpected notice %q", n.last())
	}

	if err := page.Enter(ctx, router.Params{"id": "99"}); err == nil {
		t.Fatalf("expected error for missing post")
	}
	if n.last() != "Impossible de charger l'article" || nav.last() != "/posts" {
		t.Fatalf("missing post must notify and go back")
	}
}

func TestCreatePost(t *testing.T) {
	posts := newFakePosts()
	topics := newFakeTopics()
	nav := &fakeNav{}
	n := &notices{}
	page := NewCreatePost(posts, topics, nav, n)
	ctx := context.Background()

	if err := page.Enter(ctx, nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if len(page.Topics()) != 2 {
		t.Fatalf("topics not loaded")
	}

	requireFormError(t, page.Submit(ctx, PostForm{Title: "Go", Content: "short"}), "title", "topicId", "content")
	if len(posts.created) != 0 {
		t.Fatalf("invalid form reached the server")
	}

	if err := page.Submit(ctx, PostForm{Title: "Generics", TopicID: 1, Content: "Type parameters in practice"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if nav.last() != "/posts/3" || n.last() != "Article créé avec succès" {
		t.Fatalf("unexpected outcome nav=%q notice=%q", nav.last(), n.last())
	}

	posts.err = errBoom
	if err := page.Submit(ctx, PostForm{Title: "Generics", TopicID: 1, Content: "Type parameters in practice"}); err == nil {
		t.Fatalf("expected error")
	}
	if n.last() != "Impossible de créer l'article" {
		t.Fatalf("unexpected notice %q", n.last())
	}
}

func TestTopicsSubscribeTwiceIsNoop(t *testing.T) {
	topics := newFakeTopics()
	n := &notices{}
	page := NewTopics(topics, n)
	ctx := context.Background()

	if err := page.Enter(ctx, nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if len(page.All()) != 2 || page.IsSubscribed(1) {
		t.Fatalf("unexpected initial state")
	}

	if err := page.Subscribe(ctx, 1); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !page.IsSubscribed(1) {
		t.Fatalf("topic 1 should be subscribed")
	}
	if n.last() != "Vous avez été abonné à ce thème avec succès" {
		t.Fatalf("unexpected notice %q", n.last())
	}

	if err := page.Subscribe(ctx, 1); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	if got := topics.count("subscribe 1"); got != 1 {
		t.Fatalf("expected a single subscribe call, got %d", got)
	}
}

func TestTopicsLoadsIndependently(t *testing.T) {
	topics := newFakeTopics()
	topics.subsErr = errBoom
	page := NewTopics(topics, &notices{})

	if err := page.Enter(context.Background(), nil); !errors.Is(err, errBoom) {
		t.Fatalf("expected subscriptions error, got %v", err)
	}
	if len(page.All()) != 2 {
		t.Fatalf("topics must load even when subscriptions fail")
	}
}

func newMePage(t *testing.T) (*Me, *fakeUsers, *fakeTopics, *notices) {
	t.Helper()
	store := newStore(t)
	store.LogIn("tok-1", nil)
	users := &fakeUsers{
		profile: model.UserProfile{User: model.User{ID: 1, Username: "alice", Email: "alice@example.com"}},
		token:   "tok-2",
	}
	topics := newFakeTopics()
	topics.subscribed[2] = true
	n := &notices{}
	page := NewMe(users, topics, store, n)
	if err := page.Enter(context.Background(), nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	return page, users, topics, n
}

func TestMeSendsOnlyChangedEmail(t *testing.T) {
	page, users, _, n := newMePage(t)
	if page.store.User() == nil || page.store.User().Username != "alice" {
		t.Fatalf("profile must be cached in the session")
	}

	form := page.Form()
	form.Email = "alice@new.example.com"
	if err := page.Submit(context.Background(), form); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(users.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(users.updates))
	}
	req := users.updates[0]
	if req.Username != nil || req.Password != nil || req.Email == nil || *req.Email != "alice@new.example.com" {
		t.Fatalf("payload must carry only email, got %+v", req)
	}
	if page.store.Token() != "tok-2" {
		t.Fatalf("refreshed token not stored")
	}
	if page.Profile().Email != "alice@new.example.com" {
		t.Fatalf("profile not reloaded")
	}
	if n.last() != "Profil mis à jour avec succès" {
		t.Fatalf("unexpected notice %q", n.last())
	}
}

func TestMeUnchangedOrInvalidSendsNothing(t *testing.T) {
	page, users, _, _ := newMePage(t)
	ctx := context.Background()

	if err := page.Submit(ctx, page.Form()); !errors.Is(err, ErrUnchanged) {
		t.Fatalf("expected ErrUnchanged, got %v", err)
	}

	form := page.Form()
	form.Password = "short"
	requireFormError(t, page.Submit(ctx, form), "password")

	form = page.Form()
	form.Email = "not-an-email"
	requireFormError(t, page.Submit(ctx, form), "email")

	if len(users.updates) != 0 {
		t.Fatalf("no update expected, got %d", len(users.updates))
	}
}

func TestMePasswordOnly(t *testing.T) {
	page, users, _, _ := newMePage(t)
	form := page.Form()
	form.Password = "new-password"
	if err := page.Submit(context.Background(), form); err != nil {
		t.Fatalf("submit: %v", err)
	}
	req := users.updates[0]
	if req.Password == nil || req.Username != nil || req.Email != nil {
		t.Fatalf("payload must carry only password, got %+v", req)
	}
}

func TestMeUnsubscribe(t *testing.T) {
	page, _, _, n := newMePage(t)
	if len(page.Subscriptions()) != 1 {
		t.Fatalf("expected one subscription")
	}
	if err := page.Unsubscribe(context.Background(), 2); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if len(page.Subscriptions()) != 0 {
		t.Fatalf("subscription list not replaced")
	}
	if n.last() != "Vous avez été désabonné avec succès" {
		t.Fatalf("unexpected notice %q", n.last())
	}
}
