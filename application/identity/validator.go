// Package identity validates session cookies against the platform's
// authenticated identity endpoint.
package identity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"snipetrack-backend/infrastructure/upstream/roblox"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
)

// Profile is the validated identity plus optional enrichments.
type Profile struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	RobuxBalance     *int64 `json:"robuxBalance,omitempty"`
}

// IdentitySource resolves the user behind a session cookie.
type IdentitySource interface {
	WhoAmI(ctx context.Context, cookie string) (roblox.AuthenticatedUser, error)
}

// AvatarSource resolves a user's headshot thumbnail URL.
type AvatarSource interface {
	AvatarHeadshot(ctx context.Context, userID int64) (string, error)
}

// BalanceSource resolves the authenticated user's currency balance.
type BalanceSource interface {
	RobuxBalance(ctx context.Context, cookie string, userID int64) (int64, error)
}

// Validator checks a session cookie and assembles the user profile.
type Validator struct {
	users    IdentitySource
	avatars  AvatarSource
	balances BalanceSource
	logger   *zap.Logger
}

// NewValidator creates a session validator
func NewValidator(users IdentitySource, avatars AvatarSource, balances BalanceSource, logger *zap.Logger) *Validator {
	return &Validator{
		users:    users,
		avatars:  avatars,
		balances: balances,
		logger:   logger,
	}
}

// Validate proxies the cookie to the platform's identity endpoint, then adds
// avatar and balance as best-effort enrichments. The check itself is
// read-only; enrichment failures only omit the optional fields.
func (v *Validator) Validate(ctx context.Context, cookie string) (Profile, error) {
	cleaned := strings.TrimSpace(cookie)
	if cleaned == "" {
		return Profile{}, apperrors.NewValidationError("cookie is required")
	}

	user, err := v.users.WhoAmI(ctx, cleaned)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{
		ID:               user.ID,
		Name:             user.Name,
		DisplayName:      user.DisplayName,
		HasVerifiedBadge: user.HasVerifiedBadge,
	}

	if url, ok := common.BestEffort(ctx, v.logger, "avatar", func(ctx context.Context) (string, error) {
		return v.avatars.AvatarHeadshot(ctx, user.ID)
	}); ok {
		profile.AvatarURL = url
	}

	if balance, ok := common.BestEffort(ctx, v.logger, "balance", func(ctx context.Context) (int64, error) {
		return v.balances.RobuxBalance(ctx, cleaned, user.ID)
	}); ok {
		profile.RobuxBalance = &balance
	}

	v.logger.Info("session validated", zap.Int64("userID", user.ID), zap.String("name", user.Name))
	return profile, nil
}
