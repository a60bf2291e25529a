package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

// session is the cached auth state: the bearer token plus the principal it
// belongs to. Kept in its own file so logout is a single unlink.
type session struct {
	AccessToken string          `json:"access_token"`
	Principal   model.Principal `json:"principal"`
}

func loadSession(path string) *session {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil || s.AccessToken == "" {
		return nil
	}
	return &s
}

func (c *Client) saveSession(s *session) {
	c.session = s
	if c.sessionPath == "" {
		return
	}
	if s == nil {
		if err := os.Remove(c.sessionPath); err != nil && !os.IsNotExist(err) {
			c.log.Warn("removing session file", zap.Error(err))
		}
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.sessionPath, data, 0o600); err != nil {
		c.log.Warn("saving session file", zap.Error(err))
	}
}

// authResponse is the password-grant token response.
type authResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) CurrentPrincipal(ctx context.Context) (model.Principal, error) {
	if c.session == nil {
		return model.Principal{}, remote.ErrNoSession
	}
	return c.session.Principal, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (model.Principal, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	u := c.baseURL + "/auth/v1/token?grant_type=password"
	if err := c.do(ctx, http.MethodPost, u, body, &resp); err != nil {
		return model.Principal{}, err
	}
	p := model.Principal{ID: resp.User.ID, Email: resp.User.Email}
	c.saveSession(&session{AccessToken: resp.AccessToken, Principal: p})
	return p, nil
}

// SignUp registers a new account. Services that require email confirmation
// return no token; the caller is told to confirm and sign in.
func (c *Client) SignUp(ctx context.Context, email, password string) (model.Principal, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	u := c.baseURL + "/auth/v1/signup"
	if err := c.do(ctx, http.MethodPost, u, body, &resp); err != nil {
		return model.Principal{}, err
	}
	p := model.Principal{ID: resp.User.ID, Email: resp.User.Email}
	if resp.AccessToken != "" {
		c.saveSession(&session{AccessToken: resp.AccessToken, Principal: p})
	}
	return p, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.saveSession(nil)
	return nil
}
