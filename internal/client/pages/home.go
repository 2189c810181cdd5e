package pages

import (
	"context"
	"fmt"
	"io"

	"mdd-forum/internal/client/router"
	"mdd-forum/internal/client/session"
)

type Home struct {
	store *session.Store
	nav   Navigator
}

func NewHome(store *session.Store, nav Navigator) *Home {
	return &Home{store: store, nav: nav}
}

// Enter forwards logged-in users straight to their feed.
func (p *Home) Enter(ctx context.Context, _ router.Params) error {
	if p.store.IsLoggedIn() {
		return p.nav.Navigate(ctx, "/posts")
	}
	return nil
}

func (p *Home) Render(w io.Writer) error {
	_, err := fmt.Fprint(w, "MDD\n  mdd login     Se connecter\n  mdd register  S'inscrire\n")
	return err
}
