package common

import (
	"encoding/json"
	"net/http"

	apperrors "snipetrack-backend/pkg/errors"
)

// ErrorResponse is the flat error shape every endpoint returns. Clients check
// the success flag before trusting any payload field.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RespondJSON sends a JSON response with the given status code. Payload structs
// carry their own top-level success flag.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError maps an error to its HTTP status and writes the flat error shape.
// Unknown error values are treated as internal.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if appErr := apperrors.GetAppError(err); appErr != nil {
		status = appErr.HTTPStatus
		message = appErr.Message
	}

	RespondJSON(w, status, ErrorResponse{Success: false, Error: message})
}

// ParseJSONBody parses a JSON request body with a size limit
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		return apperrors.NewValidationError("invalid request body").WithCause(err)
	}

	return nil
}

// ExtractRequestID extracts the request ID from the request headers
func ExtractRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Amzn-Trace-Id"); id != "" {
		return id
	}
	return ""
}
