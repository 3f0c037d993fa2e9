package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"snipetrack-backend/application/transactions"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
	"snipetrack-backend/pkg/utils"
)

// TransactionScanner scans one page of a user's purchase history.
type TransactionScanner interface {
	ScanPage(ctx context.Context, sessionToken string, userID int64, cursor string) (transactions.Page, error)
}

// TransactionHandler handles transaction scan requests
type TransactionHandler struct {
	scanner TransactionScanner
	logger  *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(scanner TransactionScanner, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		scanner: scanner,
		logger:  logger,
	}
}

// ScanTransactionsRequest represents the request body for scanning one page
type ScanTransactionsRequest struct {
	Cookie string `json:"cookie" validate:"required"`
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Cursor string `json:"cursor,omitempty"`
}

// ScanTransactionsResponse represents one enriched page
type ScanTransactionsResponse struct {
	Success      bool                    `json:"success"`
	Transactions []transactions.Enriched `json:"transactions"`
	NextCursor   string                  `json:"nextCursor"`
	HasMore      bool                    `json:"hasMore"`
}

// ScanTransactions handles POST /transactions/scan
func (h *TransactionHandler) ScanTransactions(w http.ResponseWriter, r *http.Request) {
	var req ScanTransactionsRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	page, err := h.scanner.ScanPage(r.Context(), req.Cookie, req.UserID, req.Cursor)
	if err != nil {
		if apperrors.IsUpstream(err) {
			h.logger.Error("transaction scan failed", zap.Int64("userID", req.UserID), zap.Error(err))
		}
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ScanTransactionsResponse{
		Success:      true,
		Transactions: page.Transactions,
		NextCursor:   page.NextCursor,
		HasMore:      page.HasMore,
	})
}
