// Package pages holds the state and actions behind each client screen.
package pages

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"mdd-forum/internal/client/api"
	"mdd-forum/internal/client/model"
)

// Notifier shows a short-lived message to the user.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

type AuthAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Me(ctx context.Context) (*model.UserProfile, error)
}

type UserAPI interface {
	Profile(ctx context.Context) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.AuthResponse, error)
}

type PostAPI interface {
	List(ctx context.Context, sort model.Sort) ([]model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	Create(ctx context.Context, req api.CreatePostRequest) (*model.Post, error)
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
	CreateComment(ctx context.Context, req api.CreateCommentRequest) (*model.Comment, error)
}

type TopicAPI interface {
	List(ctx context.Context) ([]model.Topic, error)
	Subscribe(ctx context.Context, id int64) ([]model.Topic, error)
	Unsubscribe(ctx context.Context, id int64) ([]model.Topic, error)
	Subscriptions(ctx context.Context) ([]model.Topic, error)
}

var (
	_ AuthAPI  = (*api.AuthService)(nil)
	_ UserAPI  = (*api.UserService)(nil)
	_ PostAPI  = (*api.PostService)(nil)
	_ TopicAPI = (*api.TopicService)(nil)
)

// ErrNotLoaded is returned by actions that need data the page has not fetched yet.
var ErrNotLoaded = errors.New("page data not loaded")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// FormError lists the fields that failed validation. Nothing is sent to the
// server when a form does not validate.
type FormError struct {
	Fields map[string]string
	order  []string
}

func (e *FormError) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, field := range e.order {
		msgs = append(msgs, e.Fields[field])
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e *FormError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	formErr := &FormError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := formErr.Fields[fe.Field()]; seen {
			continue
		}
		formErr.Fields[fe.Field()] = describe(fe)
		formErr.order = append(formErr.order, fe.Field())
	}
	return formErr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "gt":
		return fmt.Sprintf("%s est obligatoire", fe.Field())
	case "email":
		return fmt.Sprintf("%s doit être une adresse email valide", fe.Field())
	case "min":
		return fmt.Sprintf("%s doit contenir au moins %s caractères", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s est invalide", fe.Field())
	}
}

// settle turns the outcome of a request into the page result. A failure is
// returned unchanged and announced, unless the page was left for an unrelated
// reason. A 401 is always announced even though the redirect to the login page
// has already torn the page down. A success arriving after the page was left
// yields the context error so that nothing gets applied.
func settle(ctx context.Context, n Notifier, err error, notice string) error {
	if err != nil {
		if ctx.Err() == nil || api.IsUnauthorized(err) {
			notify(n, notice)
		}
		return err
	}
	return ctx.Err()
}

// concurrently runs independent loads in parallel. A load abandoned because
// the page was left does not hide the failure of a sibling.
func concurrently(ctx context.Context, loads ...func(context.Context) error) error {
	var g errgroup.Group
	for _, load := range loads {
		g.Go(func() error {
			err := load(ctx)
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func notify(n Notifier, message string) {
	if n != nil {
		n.Notify(message)
	}
}
