package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/transport"
)

const (
	ProviderID   = "github"
	AuthURL      = "https://github.com/login/oauth/authorize"
	TokenURL     = "https://github.com/login/oauth/access_token"
	UserURL      = "https://api.github.com/user"
	DefaultScope = "user:email"
)

var (
	ErrMissingAccessToken = errors.New("github: token response carried no access_token")
	ErrMissingLogin       = errors.New("github: user response carried no login")
)

type Config struct {
	ClientID     string
	ClientSecret string
	Scope        string
	AuthURL      string
	TokenURL     string
	UserURL      string
}

func DefaultConfig() Config {
	return Config{
		Scope:    DefaultScope,
		AuthURL:  AuthURL,
		TokenURL: TokenURL,
		UserURL:  UserURL,
	}
}

// ConfigFrom maps the gateway's auth.github section onto the client config.
func ConfigFrom(cfg core.GitHubConfig) Config {
	return Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scope:        cfg.Scope,
		AuthURL:      cfg.AuthorizeURL,
		TokenURL:     cfg.TokenURL,
		UserURL:      cfg.UserURL,
	}
}

type User struct {
	Login     string  `json:"login"`
	ID        int64   `json:"id"`
	AvatarURL string  `json:"avatar_url"`
	Email     *string `json:"email"`
}

// EmailOrEmpty returns the public email, or "" when GitHub hides it.
func (u User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// Client runs the OAuth web flow against GitHub: authorize redirect, code
// exchange and user lookup.
type Client struct {
	config  Config
	adapter *transport.RESTAdapter
}

func New(cfg Config, adapter *transport.RESTAdapter) *Client {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.Scope) == "" {
		cfg.Scope = defaults.Scope
	}
	if strings.TrimSpace(cfg.AuthURL) == "" {
		cfg.AuthURL = defaults.AuthURL
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		cfg.TokenURL = defaults.TokenURL
	}
	if strings.TrimSpace(cfg.UserURL) == "" {
		cfg.UserURL = defaults.UserURL
	}
	if adapter == nil {
		adapter = transport.NewRESTAdapter(nil)
	}
	return &Client{config: cfg, adapter: adapter}
}

// AuthorizeURL keeps the scope unescaped, matching the URL GitHub documents.
func (c *Client) AuthorizeURL() string {
	return fmt.Sprintf("%s?client_id=%s&scope=%s", c.config.AuthURL, url.QueryEscape(c.config.ClientID), c.config.Scope)
}

// ExchangeCode trades an authorization code for an access token. The
// response body is decoded regardless of status; GitHub reports most
// failures as 200 with an error payload.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	res, err := c.adapter.PostForm(ctx, c.config.TokenURL, url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"code":          {code},
	}, map[string]string{"Accept": "application/json"})
	if err != nil {
		return "", err
	}
	var token tokenResponse
	if err := json.Unmarshal(res.Body, &token); err != nil {
		return "", fmt.Errorf("github: decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrMissingAccessToken
	}
	return token.AccessToken, nil
}

func (c *Client) FetchUser(ctx context.Context, accessToken string) (User, error) {
	res, err := c.adapter.Do(ctx, core.TransportRequest{
		Method: http.MethodGet,
		URL:    c.config.UserURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Accept":        "application/json",
		},
	})
	if err != nil {
		return User{}, err
	}
	var user User
	if err := json.Unmarshal(res.Body, &user); err != nil {
		return User{}, fmt.Errorf("github: decode user response: %w", err)
	}
	if user.Login == "" {
		return User{}, ErrMissingLogin
	}
	return user, nil
}
