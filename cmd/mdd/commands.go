package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/app"
	"mdd-forum/internal/client/model"
	"mdd-forum/internal/client/pages"
)

var errLoginRequired = errors.New("connexion requise, lancez `mdd login`")

type renderer interface {
	Render(w io.Writer) error
}

type cli struct {
	app   *app.App
	flags *pflag.FlagSet
	out   io.Writer
	in    io.Reader
}

// run executes one command. A session the server rejected mid-command is
// reported as a request to log in again.
func (c *cli) run(ctx context.Context, args []string) error {
	hadSession := c.app.Store.IsLoggedIn()
	err := c.dispatch(ctx, args)
	if hadSession && api.IsUnauthorized(err) && !c.app.Store.IsLoggedIn() {
		return errLoginRequired
	}
	return err
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage(c.out)
		return nil
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "register":
		return c.register(ctx)
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.logout()
	case "status":
		return c.status()
	case "posts":
		return c.posts(ctx)
	case "post":
		return c.post(ctx, args)
	case "comment":
		return c.comment(ctx, args)
	case "create-post":
		return c.createPost(ctx)
	case "topics":
		return c.open(ctx, "/topics", c.app.Topics)
	case "subscribe":
		return c.subscribe(ctx, args)
	case "unsubscribe":
		return c.unsubscribe(ctx, args)
	case "me":
		return c.open(ctx, "/me", c.app.Me)
	case "me-update":
		return c.updateMe(ctx)
	case "help":
		usage(c.out)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// visit navigates to path and fails when a guard sent the client elsewhere.
func (c *cli) visit(ctx context.Context, path string) error {
	if err := c.app.Router.Navigate(ctx, path); err != nil {
		return err
	}
	if current := c.app.Router.Current(); current != path {
		if current == "/login" {
			return errLoginRequired
		}
		return fmt.Errorf("redirigé vers %s", current)
	}
	return nil
}

func (c *cli) open(ctx context.Context, path string, page renderer) error {
	if err := c.visit(ctx, path); err != nil {
		return err
	}
	return c.render(page)
}

func (c *cli) render(views ...renderer) error {
	for _, p := range views {
		if err := p.Render(c.out); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) register(ctx context.Context) error {
	if err := c.visit(ctx, "/register"); err != nil {
		return err
	}
	form := pages.RegisterForm{
		Username: c.stringFlag("username"),
		Email:    c.stringFlag("email"),
		Password: c.password(),
	}
	if err := c.app.Register.Submit(c.app.Context(), form); err != nil {
		c.render(c.app.Register)
		return err
	}
	return c.render(c.app.Header, c.app.Posts)
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: mdd login <email|username>")
	}
	if err := c.visit(ctx, "/login"); err != nil {
		return err
	}
	form := pages.LoginForm{Identifier: args[0], Password: c.password()}
	if err := c.app.Login.Submit(c.app.Context(), form); err != nil {
		c.render(c.app.Login)
		return err
	}
	return c.render(c.app.Header, c.app.Posts)
}

func (c *cli) logout() error {
	if err := c.app.Header.Logout(c.app.Context()); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Déconnecté.")
	return nil
}

func (c *cli) status() error {
	store := c.app.Store
	if !store.IsLoggedIn() {
		fmt.Fprintln(c.out, "Non connecté.")
		return nil
	}
	if remaining := store.ExpiresIn(time.Now()); remaining > 0 {
		fmt.Fprintf(c.out, "Connecté, jeton valide encore %s.\n", remaining.Round(time.Second))
	} else {
		fmt.Fprintln(c.out, "Connecté, jeton expiré ou sans date d'expiration.")
	}
	return nil
}

func (c *cli) posts(ctx context.Context) error {
	if err := c.visit(ctx, "/posts"); err != nil {
		return err
	}
	page := c.app.Posts
	if model.ParseSort(c.stringFlag("sort")) != page.Sort() {
		if err := page.ToggleSort(c.app.Context()); err != nil {
			return err
		}
	}
	if toggle, _ := c.flags.GetBool("toggle"); toggle {
		if err := page.ToggleSort(c.app.Context()); err != nil {
			return err
		}
	}
	return c.render(c.app.Header, page)
}

func (c *cli) post(ctx context.Context, args []string) error {
	id, err := idArg(args, 0, "usage: mdd post <id>")
	if err != nil {
		return err
	}
	return c.open(ctx, fmt.Sprintf("/posts/%d", id), c.app.PostDetail)
}

func (c *cli) comment(ctx context.Context, args []string) error {
	id, err := idArg(args, 0, "usage: mdd comment <postId> <text>")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("usage: mdd comment <postId> <text>")
	}
	if err := c.visit(ctx, fmt.Sprintf("/posts/%d", id)); err != nil {
		return err
	}
	form := pages.CommentForm{Content: strings.Join(args[1:], " ")}
	if err := c.app.PostDetail.AddComment(c.app.Context(), form); err != nil {
		return err
	}
	return c.render(c.app.PostDetail)
}

func (c *cli) createPost(ctx context.Context) error {
	if err := c.visit(ctx, "/posts/create"); err != nil {
		return err
	}
	topicID, _ := c.flags.GetInt64("topic")
	form := pages.PostForm{
		Title:   c.stringFlag("title"),
		TopicID: topicID,
		Content: c.stringFlag("content"),
	}
	if err := c.app.CreatePost.Submit(c.app.Context(), form); err != nil {
		c.render(c.app.CreatePost)
		return err
	}
	return c.render(c.app.PostDetail)
}

func (c *cli) subscribe(ctx context.Context, args []string) error {
	id, err := idArg(args, 0, "usage: mdd subscribe <topicId>")
	if err != nil {
		return err
	}
	if err := c.visit(ctx, "/topics"); err != nil {
		return err
	}
	if c.app.Topics.IsSubscribed(id) {
		fmt.Fprintln(c.out, "Déjà abonné.")
		return nil
	}
	if err := c.app.Topics.Subscribe(c.app.Context(), id); err != nil {
		return err
	}
	return c.render(c.app.Topics)
}

func (c *cli) unsubscribe(ctx context.Context, args []string) error {
	id, err := idArg(args, 0, "usage: mdd unsubscribe <topicId>")
	if err != nil {
		return err
	}
	if err := c.visit(ctx, "/me"); err != nil {
		return err
	}
	if err := c.app.Me.Unsubscribe(c.app.Context(), id); err != nil {
		return err
	}
	return c.render(c.app.Me)
}

func (c *cli) updateMe(ctx context.Context) error {
	if err := c.visit(ctx, "/me"); err != nil {
		return err
	}
	form := c.app.Me.Form()
	if c.flags.Changed("username") {
		form.Username = c.stringFlag("username")
	}
	if c.flags.Changed("email") {
		form.Email = c.stringFlag("email")
	}
	if c.flags.Changed("password") {
		form.Password, _ = c.flags.GetString("password")
	}

	err := c.app.Me.Submit(c.app.Context(), form)
	if errors.Is(err, pages.ErrUnchanged) {
		fmt.Fprintln(c.out, "Aucune modification.")
		return nil
	}
	if err != nil {
		return err
	}
	return c.render(c.app.Me)
}

func (c *cli) stringFlag(name string) string {
	v, _ := c.flags.GetString(name)
	return strings.TrimSpace(v)
}

// password reads --password, or one line from stdin when the flag is absent.
func (c *cli) password() string {
	if c.flags.Changed("password") {
		v, _ := c.flags.GetString("password")
		return v
	}
	fmt.Fprint(c.out, "Mot de passe : ")
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

func idArg(args []string, i int, usage string) (int64, error) {
	if len(args) <= i {
		return 0, errors.New(usage)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("identifiant invalide %q", args[i])
	}
	return id, nil
}
