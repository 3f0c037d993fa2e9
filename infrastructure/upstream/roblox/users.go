package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "snipetrack-backend/pkg/errors"
)

// AuthenticatedUser is the identity behind a session cookie.
type AuthenticatedUser struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
}

// WhoAmI resolves the user a session cookie belongs to. An upstream 401 or 403
// means the cookie is invalid or expired.
func (c *Client) WhoAmI(ctx context.Context, cookie string) (AuthenticatedUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.usersBaseURL+"/v1/users/authenticated", cookie)
	if err != nil {
		return AuthenticatedUser{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AuthenticatedUser{}, apperrors.NewUpstreamError("users", 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return AuthenticatedUser{}, apperrors.NewUnauthenticatedError("invalid cookie or authentication failed")
	case resp.StatusCode != http.StatusOK:
		return AuthenticatedUser{}, apperrors.NewUpstreamError("users", resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var user AuthenticatedUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return AuthenticatedUser{}, apperrors.NewUpstreamError("users", resp.StatusCode, err)
	}

	return user, nil
}
