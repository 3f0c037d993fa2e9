package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"snipetrack-backend/application/identity"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
)

// SessionValidator validates a session cookie and returns the user profile.
type SessionValidator interface {
	Validate(ctx context.Context, cookie string) (identity.Profile, error)
}

// SessionHandler handles session validation requests
type SessionHandler struct {
	validator SessionValidator
	logger    *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(validator SessionValidator, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		validator: validator,
		logger:    logger,
	}
}

// ValidateSessionRequest represents the request body for validating a session
type ValidateSessionRequest struct {
	Cookie string `json:"cookie" validate:"required"`
}

// ValidateSessionResponse represents a successful validation
type ValidateSessionResponse struct {
	Success bool             `json:"success"`
	User    identity.Profile `json:"user"`
}

// ValidateSession handles POST /session/validate
func (h *SessionHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	var req ValidateSessionRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, err)
		return
	}
	if req.Cookie == "" {
		common.RespondError(w, apperrors.NewValidationError("cookie is required"))
		return
	}

	profile, err := h.validator.Validate(r.Context(), req.Cookie)
	if err != nil {
		if !apperrors.IsUnauthenticated(err) {
			h.logger.Error("session validation failed", zap.Error(err))
		}
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ValidateSessionResponse{
		Success: true,
		User:    profile,
	})
}
