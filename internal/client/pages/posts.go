package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/model"
	"mdd-forum/internal/client/router"
)

const dateLayout = "02/01/2006"

// Posts is the feed of articles from the topics the user follows.
type Posts struct {
	posts    PostAPI
	notifier Notifier

	mu   sync.Mutex
	sort model.Sort
	list []model.Post
}

func NewPosts(posts PostAPI, notifier Notifier) *Posts {
	return &Posts{posts: posts, notifier: notifier, sort: model.SortDesc}
}

func (p *Posts) Enter(ctx context.Context, _ router.Params) error {
	p.mu.Lock()
	p.sort = model.SortDesc
	p.list = nil
	p.mu.Unlock()
	return p.load(ctx, model.SortDesc)
}

// ToggleSort fetches the feed in the opposite order. The displayed order only
// changes once the new list has arrived.
func (p *Posts) ToggleSort(ctx context.Context) error {
	return p.load(ctx, p.Sort().Toggle())
}

func (p *Posts) Sort() model.Sort {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sort
}

func (p *Posts) Items() []model.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list
}

func (p *Posts) load(ctx context.Context, sort model.Sort) error {
	list, err := p.posts.List(ctx, sort)
	if err = settle(ctx, p.notifier, err, "Impossible de charger les articles"); err != nil {
		return err
	}

	p.mu.Lock()
	p.sort = sort
	p.list = list
	p.mu.Unlock()
	return nil
}

func (p *Posts) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	arrow := "↓"
	if p.sort == model.SortAsc {
		arrow = "↑"
	}
	if _, err := fmt.Fprintf(w, "Articles (tri par date %s)\n", arrow); err != nil {
		return err
	}
	if len(p.list) == 0 {
		_, err := fmt.Fprintln(w, "  Aucun article pour le moment.")
		return err
	}
	for _, post := range p.list {
		if _, err := fmt.Fprintf(w, "  #%d %s\n     %s · %s · %s\n", post.ID, post.Title,
			post.CreatedAt.Format(dateLayout), post.User.Username, post.Topic.Title); err != nil {
			return err
		}
	}
	return nil
}

type CommentForm struct {
	Content string `form:"content" validate:"required,min=3"`
}

// PostDetail shows one article with its comments.
type PostDetail struct {
	posts    PostAPI
	nav      Navigator
	notifier Notifier

	mu       sync.Mutex
	post     *model.Post
	comments []model.Comment
}

func NewPostDetail(posts PostAPI, nav Navigator, notifier Notifier) *PostDetail {
	return &PostDetail{posts: posts, nav: nav, notifier: notifier}
}

func (p *PostDetail) Enter(ctx context.Context, params router.Params) error {
	p.mu.Lock()
	p.post = nil
	p.comments = nil
	p.mu.Unlock()

	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil || id <= 0 {
		return p.nav.Navigate(ctx, "/posts")
	}

	post, err := p.posts.Get(ctx, id)
	if err = settle(ctx, p.notifier, err, "Impossible de charger l'article"); err != nil {
		if ctx.Err() == nil {
			if navErr := p.nav.Navigate(ctx, "/posts"); navErr != nil {
				return navErr
			}
		}
		return err
	}
	p.mu.Lock()
	p.post = post
	p.mu.Unlock()

	comments, err := p.posts.ListComments(ctx, id)
	if err = settle(ctx, p.notifier, err, "Impossible de charger les commentaires"); err != nil {
		return err
	}
	p.mu.Lock()
	p.comments = comments
	p.mu.Unlock()
	return nil
}

func (p *PostDetail) Post() *model.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.post
}

func (p *PostDetail) Comments() []model.Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.comments
}

// AddComment posts a comment and appends it to the loaded list.
func (p *PostDetail) AddComment(ctx context.Context, form CommentForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	post := p.Post()
	if post == nil {
		return ErrNotLoaded
	}

	comment, err := p.posts.CreateComment(ctx, api.CreateCommentRequest{
		Content: form.Content,
		PostID:  post.ID,
	})
	if err = settle(ctx, p.notifier, err, "Impossible d'ajouter le commentaire"); err != nil {
		return err
	}

	p.mu.Lock()
	p.comments = append(p.comments, *comment)
	p.mu.Unlock()
	notify(p.notifier, "Commentaire ajouté avec succès")
	return nil
}

func (p *PostDetail) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.post == nil {
		_, err := fmt.Fprintln(w, "Chargement...")
		return err
	}

	post := p.post
	if _, err := fmt.Fprintf(w, "%s\n%s · %s · %s\n\n%s\n\nCommentaires\n", post.Title,
		post.CreatedAt.Format(dateLayout), post.User.Username, post.Topic.Title, post.Content); err != nil {
		return err
	}
	if len(p.comments) == 0 {
		_, err := fmt.Fprintln(w, "  Aucun commentaire.")
		return err
	}
	for _, c := range p.comments {
		if _, err := fmt.Fprintf(w, "  %s : %s\n", c.User.Username, c.Content); err != nil {
			return err
		}
	}
	return nil
}

type PostForm struct {
	Title   string `form:"title" validate:"required,min=3"`
	TopicID int64  `form:"topicId" validate:"gt=0"`
	Content string `form:"content" validate:"required,min=10"`
}

// CreatePost is the new-article form.
type CreatePost struct {
	posts    PostAPI
	topics   TopicAPI
	nav      Navigator
	notifier Notifier

	mu     sync.Mutex
	themes []model.Topic
}

func NewCreatePost(posts PostAPI, topics TopicAPI, nav Navigator, notifier Notifier) *CreatePost {
	return &CreatePost{posts: posts, topics: topics, nav: nav, notifier: notifier}
}

func (p *CreatePost) Enter(ctx context.Context, _ router.Params) error {
	topics, err := p.topics.List(ctx)
	if err = settle(ctx, p.notifier, err, "Impossible de charger les thèmes"); err != nil {
		return err
	}
	p.mu.Lock()
	p.themes = topics
	p.mu.Unlock()
	return nil
}

func (p *CreatePost) Topics() []model.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.themes
}

// Submit creates the article and opens it.
func (p *CreatePost) Submit(ctx context.Context, form PostForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	post, err := p.posts.Create(ctx, api.CreatePostRequest{
		Title:   form.Title,
		Content: form.Content,
		TopicID: form.TopicID,
	})
	if err = settle(ctx, p.notifier, err, "Impossible de créer l'article"); err != nil {
		return err
	}
	notify(p.notifier, "Article créé avec succès")
	return p.nav.Navigate(ctx, fmt.Sprintf("/posts/%d", post.ID))
}

func (p *CreatePost) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(w, "Créer un nouvel article\nThèmes disponibles :"); err != nil {
		return err
	}
	for _, t := range p.themes {
		if _, err := fmt.Fprintf(w, "  %d  %s\n", t.ID, t.Title); err != nil {
			return err
		}
	}
	return nil
}
