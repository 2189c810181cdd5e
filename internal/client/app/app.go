// Package app assembles the client: session, API services, router and pages.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/pages"
	"mdd-forum/internal/client/router"
	"mdd-forum/internal/client/session"
)

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Storage   session.Storage
	Transport http.RoundTripper
	Notifier  pages.Notifier
	Logger    *logrus.Logger
}

type App struct {
	Store  *session.Store
	Router *router.Router
	Header *pages.Header

	Home       *pages.Home
	Login      *pages.Login
	Register   *pages.Register
	Posts      *pages.Posts
	PostDetail *pages.PostDetail
	CreatePost *pages.CreatePost
	Topics     *pages.Topics
	Me         *pages.Me
}

// New wires a client whose pages live as long as ctx.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	store, err := session.NewStore(opts.Storage, opts.Logger)
	if err != nil {
		return nil, err
	}
	r := router.New(ctx, opts.Logger)

	client, err := api.NewClient(api.Config{
		BaseURL:   opts.BaseURL,
		Timeout:   opts.Timeout,
		Store:     store,
		Navigator: r,
		Transport: opts.Transport,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	auth := api.NewAuthService(client)
	users := api.NewUserService(client)
	posts := api.NewPostService(client)
	topics := api.NewTopicService(client)

	a := &App{
		Store:      store,
		Router:     r,
		Home:       pages.NewHome(store, r),
		Login:      pages.NewLogin(auth, store, r),
		Register:   pages.NewRegister(auth, store, r),
		Posts:      pages.NewPosts(posts, opts.Notifier),
		PostDetail: pages.NewPostDetail(posts, r, opts.Notifier),
		CreatePost: pages.NewCreatePost(posts, topics, r, opts.Notifier),
		Topics:     pages.NewTopics(topics, opts.Notifier),
		Me:         pages.NewMe(users, topics, store, opts.Notifier),
	}

	loggedIn := router.RequireLogin(store)
	r.Handle("/", a.Home)
	r.Handle("/login", a.Login)
	r.Handle("/register", a.Register)
	r.Handle("/posts", a.Posts, loggedIn)
	r.Handle("/posts/create", a.CreatePost, loggedIn)
	r.Handle("/posts/:id", a.PostDetail, loggedIn)
	r.Handle("/topics", a.Topics, loggedIn)
	r.Handle("/me", a.Me, loggedIn)
	r.Redirect("**", "/")

	a.Header = pages.NewHeader(store, r)
	return a, nil
}

// Context is the context of the page currently shown.
func (a *App) Context() context.Context {
	return a.Router.Context()
}

func (a *App) Close() {
	a.Header.Close()
	a.Router.Close()
}
