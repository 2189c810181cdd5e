package pages

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"mdd-forum/internal/client/model"
	"mdd-forum/internal/client/router"
)

// Topics lists every topic and lets the user follow the ones they like.
type Topics struct {
	topics   TopicAPI
	notifier Notifier

	mu         sync.Mutex
	all        []model.Topic
	subscribed []int64
}

func NewTopics(topics TopicAPI, notifier Notifier) *Topics {
	return &Topics{topics: topics, notifier: notifier}
}

// Enter loads the catalogue and the user's subscriptions concurrently.
// Each result is applied on its own.
func (p *Topics) Enter(ctx context.Context, _ router.Params) error {
	p.mu.Lock()
	p.all = nil
	p.subscribed = nil
	p.mu.Unlock()

	return concurrently(ctx, p.loadAll, p.loadSubscribed)
}

func (p *Topics) loadAll(ctx context.Context) error {
	all, err := p.topics.List(ctx)
	if err = settle(ctx, p.notifier, err, "Impossible de charger les thèmes"); err != nil {
		return err
	}
	p.mu.Lock()
	p.all = all
	p.mu.Unlock()
	return nil
}

func (p *Topics) loadSubscribed(ctx context.Context) error {
	subs, err := p.topics.Subscriptions(ctx)
	if err = settle(ctx, p.notifier, err, "Impossible de charger vos abonnements"); err != nil {
		return err
	}
	p.setSubscribed(subs)
	return nil
}

func (p *Topics) setSubscribed(subs []model.Topic) {
	ids := make([]int64, len(subs))
	for i, t := range subs {
		ids[i] = t.ID
	}
	p.mu.Lock()
	p.subscribed = ids
	p.mu.Unlock()
}

func (p *Topics) All() []model.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.all
}

func (p *Topics) IsSubscribed(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.subscribed, id)
}

// Subscribe follows topic id. It does nothing when already subscribed.
func (p *Topics) Subscribe(ctx context.Context, id int64) error {
	if p.IsSubscribed(id) {
		return nil
	}
	subs, err := p.topics.Subscribe(ctx, id)
	if err = settle(ctx, p.notifier, err, "Impossible de s'abonner à ce thème"); err != nil {
		return err
	}
	p.setSubscribed(subs)
	notify(p.notifier, "Vous avez été abonné à ce thème avec succès")
	return nil
}

func (p *Topics) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(w, "Thèmes"); err != nil {
		return err
	}
	for _, t := range p.all {
		state := "S'abonner"
		if slices.Contains(p.subscribed, t.ID) {
			state = "Déjà abonné"
		}
		if _, err := fmt.Fprintf(w, "  %d  %s [%s]\n      %s\n", t.ID, t.Title, state, t.Description); err != nil {
			return err
		}
	}
	return nil
}
