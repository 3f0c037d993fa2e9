// Package roblox implements clients for the platform's public APIs: identity,
// economy (transactions, balances, asset details) and thumbnails. All requests
// that act on behalf of a user authenticate with the session cookie.
package roblox

import (
	"context"
	"fmt"
	"net/http"
)

const (
	defaultUsersBaseURL      = "https://users.roblox.com"
	defaultEconomyBaseURL    = "https://economy.roblox.com"
	defaultThumbnailsBaseURL = "https://thumbnails.roblox.com"

	sessionCookieName = ".ROBLOSECURITY"
)

// Client groups the platform API endpoints behind one HTTP client.
type Client struct {
	httpClient        *http.Client
	usersBaseURL      string
	economyBaseURL    string
	thumbnailsBaseURL string
}

// Config overrides the platform base URLs, primarily for tests.
type Config struct {
	UsersBaseURL      string
	EconomyBaseURL    string
	ThumbnailsBaseURL string
}

// NewClient creates a platform client
func NewClient(httpClient *http.Client, cfg Config) *Client {
	c := &Client{
		httpClient:        httpClient,
		usersBaseURL:      cfg.UsersBaseURL,
		economyBaseURL:    cfg.EconomyBaseURL,
		thumbnailsBaseURL: cfg.ThumbnailsBaseURL,
	}
	if c.usersBaseURL == "" {
		c.usersBaseURL = defaultUsersBaseURL
	}
	if c.economyBaseURL == "" {
		c.economyBaseURL = defaultEconomyBaseURL
	}
	if c.thumbnailsBaseURL == "" {
		c.thumbnailsBaseURL = defaultThumbnailsBaseURL
	}
	return c
}

// newRequest builds a request, attaching the session cookie when provided.
func (c *Client) newRequest(ctx context.Context, method, url, cookie string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", fmt.Sprintf("%s=%s", sessionCookieName, cookie))
	}
	return req, nil
}
