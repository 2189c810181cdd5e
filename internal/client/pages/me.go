package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/model"
	"mdd-forum/internal/client/router"
	"mdd-forum/internal/client/session"
)

// ErrUnchanged is returned when a profile form carries no modification.
var ErrUnchanged = errors.New("aucune modification")

type ProfileForm struct {
	Username string `form:"username" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"omitempty,min=8"`
}

// Me is the profile screen: account details and subscriptions.
type Me struct {
	users    UserAPI
	topics   TopicAPI
	store    *session.Store
	notifier Notifier

	mu      sync.Mutex
	profile *model.UserProfile
	subs    []model.Topic
}

func NewMe(users UserAPI, topics TopicAPI, store *session.Store, notifier Notifier) *Me {
	return &Me{users: users, topics: topics, store: store, notifier: notifier}
}

func (p *Me) Enter(ctx context.Context, _ router.Params) error {
	p.mu.Lock()
	p.profile = nil
	p.subs = nil
	p.mu.Unlock()

	return concurrently(ctx, p.loadProfile, p.loadSubscriptions)
}

func (p *Me) loadProfile(ctx context.Context) error {
	profile, err := p.users.Profile(ctx)
	if err = settle(ctx, p.notifier, err, "Impossible de charger le profil"); err != nil {
		return err
	}
	p.mu.Lock()
	p.profile = profile
	p.mu.Unlock()
	p.store.SetUser(profile)
	return nil
}

func (p *Me) loadSubscriptions(ctx context.Context) error {
	subs, err := p.topics.Subscriptions(ctx)
	if err = settle(ctx, p.notifier, err, "Impossible de charger vos abonnements"); err != nil {
		return err
	}
	p.mu.Lock()
	p.subs = subs
	p.mu.Unlock()
	return nil
}

func (p *Me) Profile() *model.UserProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

func (p *Me) Subscriptions() []model.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subs
}

// Form returns the form prefilled with the loaded profile.
func (p *Me) Form() ProfileForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile == nil {
		return ProfileForm{}
	}
	return ProfileForm{Username: p.profile.Username, Email: p.profile.Email}
}

// Submit sends only the fields that differ from the loaded profile, plus the
// password when one is given. The refreshed token replaces the current one.
func (p *Me) Submit(ctx context.Context, form ProfileForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	initial := p.Profile()
	if initial == nil {
		return ErrNotLoaded
	}

	var req api.UpdateProfileRequest
	if form.Username != initial.Username {
		req.Username = &form.Username
	}
	if form.Email != initial.Email {
		req.Email = &form.Email
	}
	if form.Password != "" {
		req.Password = &form.Password
	}
	if req.Empty() {
		return ErrUnchanged
	}

	resp, err := p.users.UpdateProfile(ctx, req)
	if err = settle(ctx, p.notifier, err, "Impossible de mettre à jour le profil"); err != nil {
		return err
	}
	if err := p.store.LogIn(resp.Token, nil); err != nil {
		return err
	}
	if err := p.loadProfile(ctx); err != nil {
		return err
	}
	notify(p.notifier, "Profil mis à jour avec succès")
	return nil
}

func (p *Me) Unsubscribe(ctx context.Context, id int64) error {
	subs, err := p.topics.Unsubscribe(ctx, id)
	if err = settle(ctx, p.notifier, err, "Impossible de se désabonner"); err != nil {
		return err
	}
	p.mu.Lock()
	p.subs = subs
	p.mu.Unlock()
	notify(p.notifier, "Vous avez été désabonné avec succès")
	return nil
}

func (p *Me) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile != nil {
		if _, err := fmt.Fprintf(w, "Profil utilisateur\n  Nom d'utilisateur : %s\n  Email : %s\n", p.profile.Username, p.profile.Email); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "Abonnements"); err != nil {
		return err
	}
	if len(p.subs) == 0 {
		_, err := fmt.Fprintln(w, "  Aucun abonnement.")
		return err
	}
	for _, t := range p.subs {
		if _, err := fmt.Fprintf(w, "  %d  %s\n", t.ID, t.Title); err != nil {
			return err
		}
	}
	return nil
}
