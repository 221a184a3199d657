// internal/app/system/googleauth/googleauth.go
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/enidea/slack-clone/internal/app/system/identity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// UserInfoURL is Google's v2 userinfo endpoint.
const UserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Client drives the Google authorization-code flow.
type Client struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// New builds a Client that redirects back to baseURL + "/auth/google/callback".
func New(clientID, clientSecret, baseURL string) *Client {
	return &Client{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: UserInfoURL,
	}
}

// WithEndpoint points the client at a different token and userinfo server.
// Used by tests.
func (c *Client) WithEndpoint(ep oauth2.Endpoint, userInfoURL string) *Client {
	c.cfg.Endpoint = ep
	c.userInfoURL = userInfoURL
	return c
}

// IsConfigured returns true if client credentials are set.
func (c *Client) IsConfigured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// AuthCodeURL returns the consent-screen URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Code returns a Provider that completes sign-in with the authorization
// code delivered to the callback. An empty code means the user declined.
func (c *Client) Code(code string) identity.Provider {
	return identity.ProviderFunc(func(ctx context.Context) (identity.Profile, error) {
		if code == "" {
			return identity.Profile{}, identity.ErrSignInCancelled
		}
		token, err := c.cfg.Exchange(ctx, code)
		if err != nil {
			return identity.Profile{}, fmt.Errorf("exchange code: %w", err)
		}
		return c.fetchProfile(ctx, token)
	})
}

type userInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (c *Client) fetchProfile(ctx context.Context, token *oauth2.Token) (identity.Profile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(c.userInfoURL)
	if err != nil {
		return identity.Profile{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return identity.Profile{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return identity.Profile{}, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == "" {
		return identity.Profile{}, errors.New("user info has no id")
	}

	return identity.Profile{
		ID:             info.ID,
		DisplayName:    info.Name,
		Email:          info.Email,
		ProfilePicture: info.Picture,
	}, nil
}
