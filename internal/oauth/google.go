// Package oauth implements the external sign-in providers.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"sneakerdex/internal/model"
)

const (
	ProviderGoogle = "google"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Provider runs the authorization-code flow against one identity provider.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (model.ExternalProfile, error)
}

// Google signs users in with their Google account.
type Google struct {
	cfg         *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

var _ Provider = (*Google)(nil)

// Option customizes a Google provider.
type Option func(*Google)

// WithEndpoints points the provider at different authorization, token and
// userinfo URLs.
func WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(g *Google) {
		g.cfg.Endpoint = endpoint
		g.userInfoURL = userInfoURL
	}
}

// WithHTTPClient sets the client used for token exchange and profile requests.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Google) {
		g.httpClient = client
	}
}

// NewGoogle creates a Google provider.
func NewGoogle(clientID, clientSecret, redirectURL string, opts ...Option) *Google {
	g := &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Name() string {
	return ProviderGoogle
}

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Profile exchanges code for a token and fetches the user's profile. An
// email Google has not verified is dropped so it can never link accounts.
func (g *Google) Profile(ctx context.Context, code string) (model.ExternalProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return model.ExternalProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return model.ExternalProfile{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return model.ExternalProfile{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.ExternalProfile{}, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.ExternalProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	if payload.Sub == "" {
		return model.ExternalProfile{}, errors.New("profile has no subject")
	}

	profile := model.ExternalProfile{
		Provider:    ProviderGoogle,
		ExternalID:  payload.Sub,
		Email:       payload.Email,
		DisplayName: payload.Name,
	}
	if payload.EmailVerified != nil && !*payload.EmailVerified {
		profile.Email = ""
	}
	return profile, nil
}
