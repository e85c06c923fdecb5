package rest

import (
	"context"
	"net/http"
	"net/url"

	"sobesednik/internal/models"
)

// AuthResponse is the token pair plus profile returned by the login and
// refresh endpoints.
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// GoogleAuthURL fetches the OAuth consent URL to open in a browser.
func (c *Client) GoogleAuthURL(ctx context.Context) (string, error) {
	var resp struct {
		AuthURL string `json:"authUrl"`
	}
	if err := c.doUnauthenticated(ctx, http.MethodGet, "/auth/google", nil, &resp); err != nil {
		return "", err
	}
	return resp.AuthURL, nil
}

// GoogleCallback exchanges the OAuth callback code for a credential.
func (c *Client) GoogleCallback(ctx context.Context, code string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.doUnauthenticated(ctx, http.MethodGet, "/auth/callback/google?code="+url.QueryEscape(code), nil, &resp)
	return resp, err
}

// RefreshToken exchanges the refresh token for a new credential pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.doUnauthenticated(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refreshToken}, &resp)
	return resp, err
}

// Me returns the profile for the current access token.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.get(ctx, "/auth/me", &user)
	return user, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}
