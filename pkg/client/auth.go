package client

import (
	"context"
	"net/http"
	"time"

	"github.com/fschmidt/virtualcv/pkg/session"
)

// LoginResult is the server's answer to a successful login.
type LoginResult struct {
	Token     string        `json:"token"`
	User      *session.User `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Login exchanges a whitelisted email for a session token. The client keeps
// the token for subsequent edit operations.
//
// Login is a two-step flow: the server hands out a single-use state token
// which must accompany the email.
func (c *Client) Login(ctx context.Context, email string) (*LoginResult, error) {
	var state struct {
		State string `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/state", nil, &state); err != nil {
		return nil, err
	}

	var result LoginResult
	body := map[string]string{"email": email, "state": state.State}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Logout invalidates the current session token on the server.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Me returns the user attached to the current session token.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := c.get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetToken replaces the bearer token, e.g. after loading a stored session.
func (c *Client) SetToken(token string) { c.token = token }
