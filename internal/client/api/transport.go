package api

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"mdd-forum/internal/client/session"
)

// LoginPath is where the client is sent when the server rejects its token.
const LoginPath = "/login"

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// AuthTransport attaches the session token to outgoing requests and ends
// the session when the server answers 401.
type AuthTransport struct {
	Base      http.RoundTripper
	Store     *session.Store
	Navigator Navigator
	Logger    *logrus.Logger
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var sent string
	if tok := t.Store.OAuthToken(); tok != nil {
		req = req.Clone(req.Context())
		tok.SetAuthHeader(req)
		sent = tok.AccessToken
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.Store.Invalidate(sent) {
		t.logger().WithField("path", req.URL.Path).Info("session rejected by server, logged out")
		if t.Navigator != nil {
			// the request context dies with the page that issued it
			navCtx := context.WithoutCancel(req.Context())
			if navErr := t.Navigator.Navigate(navCtx, LoginPath); navErr != nil {
				t.logger().Warnf("redirect to login: %v", navErr)
			}
		}
	}
	return resp, nil
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) logger() *logrus.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logrus.StandardLogger()
}
