package pages

import (
	"context"
	"fmt"
	"io"
	"sync"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/router"
	"mdd-forum/internal/client/session"
)

type LoginForm struct {
	Identifier string `form:"identifier" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

type RegisterForm struct {
	Username string `form:"username" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

// authForm keeps the inline error shared by the login and register screens.
type authForm struct {
	auth  AuthAPI
	store *session.Store
	nav   Navigator

	mu  sync.Mutex
	err error
}

func (f *authForm) reset() {
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
}

func (f *authForm) fail(err error) error {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	return err
}

// OnError reports whether the last submission failed.
func (f *authForm) OnError() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err != nil
}

func (f *authForm) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// complete stores the token, loads the profile and opens the feed.
func (f *authForm) complete(ctx context.Context, resp *api.AuthResponse) error {
	if err := f.store.LogIn(resp.Token, nil); err != nil {
		return f.fail(err)
	}
	user, err := f.auth.Me(ctx)
	if err != nil {
		return f.fail(err)
	}
	f.store.SetUser(user)
	return f.nav.Navigate(ctx, "/posts")
}

func (f *authForm) render(w io.Writer, title string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if err := f.Err(); err != nil {
		_, err := fmt.Fprintf(w, "Une erreur est survenue : %v\n", err)
		return err
	}
	return nil
}

type Login struct {
	authForm
}

func NewLogin(auth AuthAPI, store *session.Store, nav Navigator) *Login {
	return &Login{authForm{auth: auth, store: store, nav: nav}}
}

func (p *Login) Enter(ctx context.Context, _ router.Params) error {
	p.reset()
	return nil
}

func (p *Login) Submit(ctx context.Context, form LoginForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	p.reset()
	resp, err := p.auth.Login(ctx, api.LoginRequest{
		Identifier: form.Identifier,
		Password:   form.Password,
	})
	if err != nil {
		return p.fail(err)
	}
	return p.complete(ctx, resp)
}

func (p *Login) Render(w io.Writer) error {
	return p.render(w, "Se connecter")
}

type Register struct {
	authForm
}

func NewRegister(auth AuthAPI, store *session.Store, nav Navigator) *Register {
	return &Register{authForm{auth: auth, store: store, nav: nav}}
}

func (p *Register) Enter(ctx context.Context, _ router.Params) error {
	p.reset()
	return nil
}

func (p *Register) Submit(ctx context.Context, form RegisterForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	p.reset()
	resp, err := p.auth.Register(ctx, api.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return p.fail(err)
	}
	return p.complete(ctx, resp)
}

func (p *Register) Render(w io.Writer) error {
	return p.render(w, "Inscription")
}
